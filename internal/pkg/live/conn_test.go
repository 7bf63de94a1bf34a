package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestConnEchoAndCloseCancelsContext(t *testing.T) {
	srv := NewServer(nil, nil)
	closed := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := srv.Upgrade(w, r, "test")
		if err != nil {
			return
		}
		go func() {
			<-conn.Context().Done()
			close(closed)
		}()
		conn.ReadLoop(func(msg Message) {
			conn.Send("echo", msg.Type)
		})
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	if err := ws.WriteJSON(Message{Type: "ping"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var frame struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Type != "echo" || frame.Data != "ping" {
		t.Fatalf("unexpected frame %s", raw)
	}

	ws.Close()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected connection context to be cancelled after disconnect")
	}
}

func TestOriginCheck(t *testing.T) {
	srv := NewServer([]string{"https://console.hccc.example"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	if srv.upgrader.CheckOrigin(req) {
		t.Fatal("expected foreign origin to be rejected")
	}
	req.Header.Set("Origin", "https://console.hccc.example")
	if !srv.upgrader.CheckOrigin(req) {
		t.Fatal("expected allowed origin to pass")
	}
}
