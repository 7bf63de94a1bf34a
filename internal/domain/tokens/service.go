package tokens

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/metrics"
	"github.com/hccc/gameroom-console/internal/pkg/session"
)

// Upstream is the part of the HCCC client the token view-model needs. The
// client is already bound to the operator's session token.
type Upstream interface {
	UserTokens(ctx context.Context, userID string, query url.Values) ([]hccc.TokenBalance, error)
	AdjustTokens(ctx context.Context, userID string, in hccc.AdjustTokens) (*hccc.TokenBalance, error)
}

// Outcome of an audited adjustment.
const (
	OutcomeConfirmed  = "confirmed"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// AdjustmentRecord is what the audit log keeps per issued request.
type AdjustmentRecord struct {
	OperatorID string
	UserID     string
	GameID     string
	Location   string
	Delta      int
	Requested  int
	Confirmed  *int
	Outcome    string
	Error      string
	Took       time.Duration
}

// AuditRecorder persists adjustment outcomes.
type AuditRecorder interface {
	RecordAdjustment(ctx context.Context, rec AdjustmentRecord) error
}

// Service owns one Workspace per operator session.
type Service struct {
	hub     *Hub
	audit   AuditRecorder
	metrics *metrics.Metrics

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewService(hub *Hub, audit AuditRecorder, m *metrics.Metrics) *Service {
	if hub == nil {
		hub = NewHub()
	}
	return &Service{
		hub:        hub,
		audit:      audit,
		metrics:    m,
		workspaces: make(map[string]*Workspace),
	}
}

func (s *Service) Hub() *Hub { return s.hub }

// Open returns the session's workspace, creating it on first use. Every
// Open must be paired with Release. The upstream client is replaced on
// each Open so a refreshed token is picked up.
func (s *Service) Open(sess *session.Session, up Upstream) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sess.Key()
	w := s.workspaces[key]
	if w == nil {
		ctx, cancel := context.WithCancel(context.Background())
		w = &Workspace{
			svc:        s,
			key:        key,
			operatorID: sess.UserID,
			overlay:    NewOverlay(),
			ctx:        ctx,
			cancel:     cancel,
		}
		s.workspaces[key] = w
	}
	w.mu.Lock()
	w.up = up
	w.refs++
	w.mu.Unlock()
	return w
}

// Active returns the number of open workspaces.
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

// Shutdown cancels every workspace; in-flight requests fail and roll back.
func (s *Service) Shutdown() {
	s.mu.Lock()
	list := make([]*Workspace, 0, len(s.workspaces))
	for _, w := range s.workspaces {
		list = append(list, w)
	}
	s.mu.Unlock()

	for _, w := range list {
		w.cancel()
	}
	for _, w := range list {
		w.wg.Wait()
	}
}

func (s *Service) maybeClose(w *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.mu.Lock()
	idle := w.refs == 0 && w.active == 0
	w.mu.Unlock()
	if idle && s.workspaces[w.key] == w {
		delete(s.workspaces, w.key)
		w.cancel()
	}
}

// Workspace is the token view-model of one operator session.
type Workspace struct {
	svc        *Service
	key        string
	operatorID string
	overlay    *Overlay

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	up     Upstream
	refs   int
	active int
}

func (w *Workspace) Key() string       { return w.key }
func (w *Workspace) Overlay() *Overlay { return w.overlay }

// Release ends one Open. The workspace is discarded once it is released
// and no adjustment is in flight.
func (w *Workspace) Release() {
	w.mu.Lock()
	if w.refs > 0 {
		w.refs--
	}
	w.mu.Unlock()
	w.svc.maybeClose(w)
}

func (w *Workspace) upstream() Upstream {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.up
}

// LoadUser fetches the user's balances and merges them into the overlay.
func (w *Workspace) LoadUser(ctx context.Context, userID string, query url.Values) ([]View, error) {
	list, err := w.upstream().UserTokens(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	w.overlay.Load(FromHCCCList(list))
	views := w.overlay.Views(userID)
	w.svc.hub.Publish(w.key, Event{Type: EventLoaded, Key: userID, Views: views})
	return views, nil
}

// DisplayedTokens is the value shown for b in this workspace.
func (w *Workspace) DisplayedTokens(b Balance) int {
	return DisplayedTokens(b, w.overlay)
}

// ApplyDelta moves the displayed value by delta, floored at zero, and
// issues (or queues) the adjustment. A decrement below Step is refused.
func (w *Workspace) ApplyDelta(ctx context.Context, b Balance, delta int) (View, error) {
	if err := validKey(b.Key()); err != nil {
		return View{}, err
	}
	w.overlay.Adopt(b)
	confirmed, _ := w.overlay.Balance(b.Key())
	displayed := DisplayedTokens(confirmed, w.overlay)
	if delta < 0 && displayed < Step {
		return w.view(b.Key()), ErrDecrementDisabled
	}
	return w.edit(ctx, b.Key(), displayed+delta)
}

// SetValue is the direct numeric input path: same as ApplyDelta with the
// delta taken against the confirmed balance.
func (w *Workspace) SetValue(ctx context.Context, b Balance, value int) (View, error) {
	if err := validKey(b.Key()); err != nil {
		return View{}, err
	}
	w.overlay.Adopt(b)
	return w.edit(ctx, b.Key(), value)
}

func (w *Workspace) edit(_ context.Context, k Key, target int) (View, error) {
	select {
	case <-w.ctx.Done():
		return View{}, ErrWorkspaceClosed
	default:
	}

	req, coalesced, err := w.overlay.Edit(k, target)
	if err != nil {
		return View{}, err
	}
	view := w.view(k)
	if coalesced {
		w.svc.metrics.IncAdjustment("coalesced")
	}
	if req != nil || coalesced {
		w.svc.hub.Publish(w.key, Event{Type: EventOptimistic, Key: k.String(), RequestID: view.RequestID, View: &view})
	}
	if req != nil {
		w.dispatch(*req)
	}
	return view, nil
}

// dispatch runs req and any follow-up requests for the same key on one
// goroutine, so a key never has two requests in flight. It is detached
// from the caller's request context and bound to the workspace instead.
func (w *Workspace) dispatch(req Request) {
	w.mu.Lock()
	w.active++
	w.mu.Unlock()
	w.wg.Add(1)

	go func() {
		defer func() {
			w.mu.Lock()
			w.active--
			w.mu.Unlock()
			w.wg.Done()
			w.svc.maybeClose(w)
		}()

		next := &req
		for next != nil {
			next = w.send(*next)
		}
	}()
}

func (w *Workspace) send(req Request) *Request {
	w.svc.metrics.IncAdjustment("issued")
	start := time.Now()

	res, err := w.upstream().AdjustTokens(w.ctx, req.Key.UserID, hccc.AdjustTokens{
		GameID:   req.Key.GameID,
		Location: req.Key.Location,
		Delta:    req.Delta,
	})
	if err != nil {
		w.OnAdjustmentFailed(req, err, time.Since(start))
		return nil
	}
	return w.OnAdjustmentConfirmed(req, FromHCCC(*res), time.Since(start))
}

// OnAdjustmentConfirmed replaces the confirmed value with the server's and
// clears the optimistic entry unless a newer edit is queued, in which case
// the follow-up request is returned.
func (w *Workspace) OnAdjustmentConfirmed(req Request, b Balance, took time.Duration) *Request {
	next, stale := w.overlay.Confirm(req, b)
	confirmed := b.Tokens
	rec := AdjustmentRecord{
		OperatorID: w.operatorID,
		UserID:     req.Key.UserID,
		GameID:     req.Key.GameID,
		Location:   req.Key.Location,
		Delta:      req.Delta,
		Requested:  req.Target,
		Confirmed:  &confirmed,
		Outcome:    OutcomeConfirmed,
		Took:       took,
	}
	if stale {
		w.svc.metrics.IncAdjustment("stale")
		rec.Outcome = OutcomeSuperseded
		w.record(rec)
		return nil
	}

	w.svc.metrics.IncAdjustment("confirmed")
	w.record(rec)
	view := w.view(req.Key)
	w.svc.hub.Publish(w.key, Event{Type: EventConfirmed, Key: req.Key.String(), RequestID: req.ID, View: &view})
	if next != nil {
		w.svc.hub.Publish(w.key, Event{Type: EventOptimistic, Key: req.Key.String(), RequestID: next.ID, View: &view})
	}
	return next
}

// OnAdjustmentFailed rolls back to the last confirmed value. The failure
// is logged and published; it is not retried.
func (w *Workspace) OnAdjustmentFailed(req Request, err error, took time.Duration) {
	stale := w.overlay.Fail(req, err)
	rec := AdjustmentRecord{
		OperatorID: w.operatorID,
		UserID:     req.Key.UserID,
		GameID:     req.Key.GameID,
		Location:   req.Key.Location,
		Delta:      req.Delta,
		Requested:  req.Target,
		Outcome:    OutcomeFailed,
		Error:      hccc.MessageOf(err),
		Took:       took,
	}
	if stale {
		w.svc.metrics.IncAdjustment("stale")
		rec.Outcome = OutcomeSuperseded
		w.record(rec)
		return
	}

	w.svc.metrics.IncAdjustment("failed")
	if !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).
			Str("operator_id", w.operatorID).
			Str("key", req.Key.String()).
			Int("delta", req.Delta).
			Msg("Token adjustment failed, rolled back")
	}
	w.record(rec)
	view := w.view(req.Key)
	w.svc.hub.Publish(w.key, Event{Type: EventFailed, Key: req.Key.String(), RequestID: req.ID, View: &view, Error: rec.Error})
}

func (w *Workspace) record(rec AdjustmentRecord) {
	if w.svc.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.svc.audit.RecordAdjustment(ctx, rec); err != nil {
		log.Error().Err(err).Str("user_id", rec.UserID).Msg("Failed to audit token adjustment")
	}
}

func (w *Workspace) view(k Key) View {
	v, _ := w.overlay.View(k)
	return v
}

// Wait blocks until no adjustment is in flight. Used by tests and shutdown.
func (w *Workspace) Wait() {
	w.wg.Wait()
}

func validKey(k Key) error {
	if k.UserID == "" || k.GameID == "" || k.Location == "" {
		return ErrInvalidKey
	}
	return nil
}
