package tokens

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/session"
)

type adjustCall struct {
	userID string
	in     hccc.AdjustTokens
	reply  chan adjustReply
}

type adjustReply struct {
	tokens int
	err    error
}

// fakeUpstream parks every AdjustTokens call on calls until the test
// answers it.
type fakeUpstream struct {
	balances []hccc.TokenBalance
	calls    chan adjustCall
}

func newFakeUpstream(balances ...hccc.TokenBalance) *fakeUpstream {
	return &fakeUpstream{balances: balances, calls: make(chan adjustCall, 16)}
}

func (f *fakeUpstream) UserTokens(_ context.Context, userID string, _ url.Values) ([]hccc.TokenBalance, error) {
	var out []hccc.TokenBalance
	for _, b := range f.balances {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeUpstream) AdjustTokens(ctx context.Context, userID string, in hccc.AdjustTokens) (*hccc.TokenBalance, error) {
	call := adjustCall{userID: userID, in: in, reply: make(chan adjustReply, 1)}
	f.calls <- call
	select {
	case r := <-call.reply:
		if r.err != nil {
			return nil, r.err
		}
		return &hccc.TokenBalance{UserID: userID, GameID: in.GameID, Location: in.Location, Tokens: r.tokens}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeUpstream) next(t *testing.T) adjustCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected an adjustment request")
		return adjustCall{}
	}
}

func (f *fakeUpstream) none(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected adjustment request: %+v", c.in)
	case <-time.After(50 * time.Millisecond):
	}
}

type memAudit struct {
	mu   sync.Mutex
	recs []AdjustmentRecord
}

func (m *memAudit) RecordAdjustment(_ context.Context, rec AdjustmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memAudit) outcomes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, r.Outcome)
	}
	return out
}

func operator() *session.Session {
	return &session.Session{Token: "tok", UserID: "op1", Role: session.RoleAdmin}
}

func wire(b Balance) hccc.TokenBalance {
	return hccc.TokenBalance{UserID: b.UserID, GameID: b.GameID, GameName: b.GameName, Location: b.Location, Tokens: b.Tokens, PendingTokens: b.PendingTokens}
}

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("expected an event")
		return Event{}
	}
}

func TestWorkspaceIncrementConfirms(t *testing.T) {
	b := balance(20, 5)
	up := newFakeUpstream(wire(b))
	audit := &memAudit{}
	svc := NewService(nil, audit, nil)
	w := svc.Open(operator(), up)
	defer w.Release()
	events, unsubscribe := svc.Hub().Subscribe(w.Key())
	defer unsubscribe()

	view, err := w.ApplyDelta(context.Background(), b, Step)
	require.NoError(t, err)
	assert.Equal(t, 25, view.Displayed)
	assert.Equal(t, PhaseInFlight, view.Phase)
	assert.Equal(t, EventOptimistic, nextEvent(t, events).Type)

	call := up.next(t)
	assert.Equal(t, "u1", call.userID)
	assert.Equal(t, hccc.AdjustTokens{GameID: "g1", Location: "downtown", Delta: 5}, call.in)
	call.reply <- adjustReply{tokens: 25}
	w.Wait()

	ev := nextEvent(t, events)
	assert.Equal(t, EventConfirmed, ev.Type)
	require.NotNil(t, ev.View)
	assert.Equal(t, 25, ev.View.Displayed)
	assert.Equal(t, PhaseConfirmed, ev.View.Phase)
	assert.Equal(t, []string{OutcomeConfirmed}, audit.outcomes())
}

func TestWorkspaceDecrementDisabledBelowStep(t *testing.T) {
	up := newFakeUpstream()
	svc := NewService(nil, nil, nil)
	w := svc.Open(operator(), up)
	defer w.Release()

	_, err := w.ApplyDelta(context.Background(), balance(4, 0), -Step)
	assert.ErrorIs(t, err, ErrDecrementDisabled)
	up.none(t)

	view, err := w.SetValue(context.Background(), balance(4, 0), -10)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Displayed, "never negative")
	assert.Equal(t, -4, up.next(t).in.Delta)
	svc.Shutdown()
}

func TestWorkspaceCoalescesEditsIntoOneFollowUp(t *testing.T) {
	b := balance(20, 0)
	up := newFakeUpstream()
	audit := &memAudit{}
	svc := NewService(nil, audit, nil)
	w := svc.Open(operator(), up)
	defer w.Release()

	_, err := w.ApplyDelta(context.Background(), b, Step)
	require.NoError(t, err)
	first := up.next(t)

	for range 3 {
		_, err = w.ApplyDelta(context.Background(), b, Step)
		require.NoError(t, err)
	}
	up.none(t)
	assert.Equal(t, 40, w.DisplayedTokens(b))

	first.reply <- adjustReply{tokens: 25}
	second := up.next(t)
	assert.Equal(t, 15, second.in.Delta)
	second.reply <- adjustReply{tokens: 40}
	w.Wait()

	v, ok := w.Overlay().View(b.Key())
	require.True(t, ok)
	assert.Equal(t, PhaseConfirmed, v.Phase)
	assert.Equal(t, 40, v.Displayed)
	assert.Equal(t, []string{OutcomeConfirmed, OutcomeConfirmed}, audit.outcomes())
}

func TestWorkspaceFailureRollsBack(t *testing.T) {
	b := balance(20, 0)
	up := newFakeUpstream()
	audit := &memAudit{}
	svc := NewService(nil, audit, nil)
	w := svc.Open(operator(), up)
	defer w.Release()
	events, unsubscribe := svc.Hub().Subscribe(w.Key())
	defer unsubscribe()

	_, err := w.ApplyDelta(context.Background(), b, -Step)
	require.NoError(t, err)
	nextEvent(t, events)

	up.next(t).reply <- adjustReply{err: &hccc.APIError{Status: 400, Message: "Insufficient tokens"}}
	w.Wait()

	ev := nextEvent(t, events)
	assert.Equal(t, EventFailed, ev.Type)
	assert.Equal(t, "Insufficient tokens", ev.Error)
	require.NotNil(t, ev.View)
	assert.Equal(t, 20, ev.View.Displayed)
	assert.Equal(t, 20, w.DisplayedTokens(b))
	up.none(t)
	assert.Equal(t, []string{OutcomeFailed}, audit.outcomes())
}

func TestWorkspaceLoadUser(t *testing.T) {
	up := newFakeUpstream(
		wire(balance(20, 5)),
		hccc.TokenBalance{UserID: "u1", GameID: "g2", Location: "mall", Tokens: -3},
		hccc.TokenBalance{UserID: "u2", GameID: "g1", Location: "mall", Tokens: 9},
	)
	svc := NewService(nil, nil, nil)
	w := svc.Open(operator(), up)
	defer w.Release()

	views, err := w.LoadUser(context.Background(), "u1", nil)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 25, views[0].TotalWithPending)
	assert.Equal(t, 0, views[1].Tokens, "negative balances are floored")
}

func TestWorkspaceRejectsIncompleteKey(t *testing.T) {
	svc := NewService(nil, nil, nil)
	w := svc.Open(operator(), newFakeUpstream())
	defer w.Release()

	_, err := w.ApplyDelta(context.Background(), Balance{UserID: "u1", GameID: "g1"}, Step)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestServiceSharesWorkspacePerSession(t *testing.T) {
	svc := NewService(nil, nil, nil)
	up := newFakeUpstream()

	a := svc.Open(operator(), up)
	b := svc.Open(operator(), up)
	other := svc.Open(&session.Session{Token: "t2", UserID: "op2", Role: session.RoleCashier}, up)
	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, svc.Active())

	a.Release()
	assert.Equal(t, 2, svc.Active())
	b.Release()
	other.Release()
	assert.Equal(t, 0, svc.Active())
}

func TestWorkspaceOutlivesReleaseWhileInFlight(t *testing.T) {
	b := balance(20, 0)
	up := newFakeUpstream()
	svc := NewService(nil, nil, nil)
	w := svc.Open(operator(), up)

	_, err := w.ApplyDelta(context.Background(), b, Step)
	require.NoError(t, err)
	call := up.next(t)

	w.Release()
	assert.Equal(t, 1, svc.Active())

	call.reply <- adjustReply{tokens: 25}
	w.Wait()
	require.Eventually(t, func() bool { return svc.Active() == 0 }, time.Second, 5*time.Millisecond)
}

func TestShutdownFailsInFlight(t *testing.T) {
	b := balance(20, 0)
	up := newFakeUpstream()
	svc := NewService(nil, nil, nil)
	w := svc.Open(operator(), up)
	defer w.Release()

	_, err := w.ApplyDelta(context.Background(), b, Step)
	require.NoError(t, err)
	up.next(t)

	svc.Shutdown()
	assert.Equal(t, 20, w.DisplayedTokens(b))

	_, err = w.ApplyDelta(context.Background(), b, Step)
	assert.ErrorIs(t, err, ErrWorkspaceClosed)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("s")
	assert.Equal(t, 1, h.Subscribers("s"))
	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers("s"))

	h.Publish("s", Event{Type: EventLoaded})
}

func TestAuditFailureDoesNotBlock(t *testing.T) {
	b := balance(20, 0)
	up := newFakeUpstream()
	svc := NewService(nil, failingAudit{}, nil)
	w := svc.Open(operator(), up)
	defer w.Release()

	_, err := w.ApplyDelta(context.Background(), b, Step)
	require.NoError(t, err)
	up.next(t).reply <- adjustReply{tokens: 25}
	w.Wait()
	assert.Equal(t, 25, w.DisplayedTokens(balance(25, 0)))
}

type failingAudit struct{}

func (failingAudit) RecordAdjustment(context.Context, AdjustmentRecord) error {
	return errors.New("db down")
}
