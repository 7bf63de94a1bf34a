// Package live runs the WebSocket connections behind the console's live
// views. Each connection owns a context that is cancelled when the socket
// closes, so view state bound to it is released on disconnect.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hccc/gameroom-console/internal/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Message is one client → server frame.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Frame is one server → client frame.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Server upgrades HTTP requests into live connections.
type Server struct {
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
}

func NewServer(allowedOrigins []string, m *metrics.Metrics) *Server {
	return &Server{
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed || allowed == "*" {
						return true
					}
				}
				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// Conn is an upgraded live view connection.
type Conn struct {
	ws     *websocket.Conn
	view   string
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	srv    *Server
}

// Upgrade upgrades the request and starts the write pump. On failure the
// upgrader has already written an HTTP error.
func (s *Server) Upgrade(w http.ResponseWriter, r *http.Request, view string) (*Conn, error) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("view", view).Msg("WebSocket upgrade failed")
		return nil, err
	}

	// Detached from the request: the HTTP server cancels r.Context() once
	// the handler returns, which may happen before the socket closes.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &Conn{
		ws:     ws,
		view:   view,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		srv:    s,
	}
	s.metrics.LiveOpened(view)
	go c.writePump()
	return c, nil
}

// Context is cancelled when the connection closes.
func (c *Conn) Context() context.Context { return c.ctx }

// Send queues a frame. It never blocks; a slow client loses frames and
// false is returned.
func (c *Conn) Send(frameType string, data interface{}) bool {
	payload, err := json.Marshal(Frame{Type: frameType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("view", c.view).Msg("Live frame marshal failed")
		return false
	}
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		log.Warn().Str("view", c.view).Msg("Live frame dropped, client too slow")
		return false
	}
}

// ReadLoop blocks reading client frames until the socket closes, then
// closes the connection. Malformed frames are skipped.
func (c *Conn) ReadLoop(handle func(Message)) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("view", c.view).Msg("WebSocket read error")
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			c.Send("error", map[string]string{"message": "malformed frame"})
			continue
		}
		handle(msg)
	}
}

// Close cancels the connection context and stops the pumps. Safe to call
// more than once.
func (c *Conn) Close() {
	c.once.Do(func() {
		c.cancel()
		c.srv.metrics.LiveClosed(c.view)
	})
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
