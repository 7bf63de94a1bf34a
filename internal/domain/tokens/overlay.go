package tokens

import (
	"slices"
	"sync"
)

// Request is one adjustment to send upstream. Delta is always the
// difference between the optimistic target and the confirmed balance.
type Request struct {
	ID     uint64
	Key    Key
	Delta  int
	Target int
}

// pending is a key that is not simply Confirmed.
type pending struct {
	phase      Phase
	optimistic int
	requestID  uint64
	queued     *int
	err        error
}

// Overlay holds the confirmed balances of one operator session together
// with the optimistic edits layered on top of them. Per key it is a state
// machine:
//
//	Confirmed ──edit──▶ InFlight(optimistic, id) ──ok──▶ Confirmed
//	                        │  ▲                  └─fail─▶ Failed(last confirmed)
//	                        └──┘ edit: coalesce into one queued target
//
// At most one request per key is in flight. Overlay does no I/O.
type Overlay struct {
	mu       sync.Mutex
	balances map[Key]Balance
	order    []Key
	pending  map[Key]*pending
	seq      uint64
}

func NewOverlay() *Overlay {
	return &Overlay{
		balances: make(map[Key]Balance),
		pending:  make(map[Key]*pending),
	}
}

// Load replaces confirmed balances with fresh server data. Keys with an
// edit in flight keep their optimistic value; a Failed marker is cleared
// because the operator is now looking at fresh data.
func (o *Overlay) Load(list []Balance) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, b := range list {
		o.putLocked(b)
		if p := o.pending[b.Key()]; p != nil && p.phase == PhaseFailed {
			delete(o.pending, b.Key())
		}
	}
}

// Adopt records b as confirmed unless the key is already known.
func (o *Overlay) Adopt(b Balance) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.balances[b.Key()]; !ok {
		o.putLocked(b)
	}
}

func (o *Overlay) putLocked(b Balance) {
	k := b.Key()
	if _, ok := o.balances[k]; !ok {
		o.order = append(o.order, k)
	}
	o.balances[k] = b
}

// Balance returns the confirmed balance for k.
func (o *Overlay) Balance(k Key) (Balance, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.balances[k]
	return b, ok
}

// optimistic reports the value an in-flight edit shows for k.
func (o *Overlay) optimistic(k Key) (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p := o.pending[k]; p != nil && p.phase == PhaseInFlight {
		return p.optimistic, true
	}
	return 0, false
}

// DisplayedTokens is the optimistic value for b's key when an edit is in
// flight, otherwise b.Tokens.
func DisplayedTokens(b Balance, o *Overlay) int {
	if o != nil {
		if v, ok := o.optimistic(b.Key()); ok {
			return v
		}
	}
	return b.Tokens
}

// Edit sets the optimistic target for k. When no request is in flight it
// returns the request to issue. While one is in flight the target is
// queued and coalesced is true. A target equal to the confirmed value
// issues nothing.
func (o *Overlay) Edit(k Key, target int) (req *Request, coalesced bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	b, ok := o.balances[k]
	if !ok {
		return nil, false, ErrUnknownBalance
	}
	target = max(0, target)

	p := o.pending[k]
	if p != nil && p.phase == PhaseInFlight {
		p.optimistic = target
		p.queued = &target
		return nil, true, nil
	}

	delta := target - b.Tokens
	if delta == 0 {
		delete(o.pending, k)
		return nil, false, nil
	}

	o.seq++
	o.pending[k] = &pending{phase: PhaseInFlight, optimistic: target, requestID: o.seq}
	return &Request{ID: o.seq, Key: k, Delta: delta, Target: target}, false, nil
}

// Confirm applies the server's answer to req. When a newer target was
// queued meanwhile, the follow-up request is returned with its delta taken
// against the new confirmed value. stale is true when req is no longer the
// request in flight for its key; its result is then discarded.
func (o *Overlay) Confirm(req Request, b Balance) (next *Request, stale bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p := o.pending[req.Key]
	if p == nil || p.phase != PhaseInFlight || p.requestID != req.ID {
		return nil, true
	}
	o.putLocked(b)

	if p.queued == nil {
		delete(o.pending, req.Key)
		return nil, false
	}

	target := *p.queued
	delta := target - b.Tokens
	if delta == 0 {
		delete(o.pending, req.Key)
		return nil, false
	}
	o.seq++
	o.pending[req.Key] = &pending{phase: PhaseInFlight, optimistic: target, requestID: o.seq}
	return &Request{ID: o.seq, Key: req.Key, Delta: delta, Target: target}, false
}

// Fail rolls the key back to its last confirmed value. A queued target is
// dropped with it; nothing is retried.
func (o *Overlay) Fail(req Request, err error) (stale bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p := o.pending[req.Key]
	if p == nil || p.phase != PhaseInFlight || p.requestID != req.ID {
		return true
	}
	o.pending[req.Key] = &pending{phase: PhaseFailed, err: err}
	return false
}

// InFlight reports whether any request is outstanding.
func (o *Overlay) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, p := range o.pending {
		if p.phase == PhaseInFlight {
			return true
		}
	}
	return false
}

// View renders k.
func (o *Overlay) View(k Key) (View, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.balances[k]
	if !ok {
		return View{}, false
	}
	return o.viewLocked(b), true
}

// Views renders every known balance, filtered to userID when set, in load
// order.
func (o *Overlay) Views(userID string) []View {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]View, 0, len(o.order))
	for _, k := range o.order {
		if userID != "" && k.UserID != userID {
			continue
		}
		out = append(out, o.viewLocked(o.balances[k]))
	}
	return out
}

// Forget drops confirmed balances for userID that have no pending state.
func (o *Overlay) Forget(userID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.order = slices.DeleteFunc(o.order, func(k Key) bool {
		if k.UserID != userID || o.pending[k] != nil {
			return false
		}
		delete(o.balances, k)
		return true
	})
}

func (o *Overlay) viewLocked(b Balance) View {
	v := View{
		Balance:          b,
		Key:              b.Key().String(),
		Displayed:        b.Tokens,
		TotalWithPending: b.TotalWithPending(),
		Phase:            PhaseConfirmed,
	}
	if p := o.pending[b.Key()]; p != nil {
		v.Phase = p.phase
		switch p.phase {
		case PhaseInFlight:
			v.Displayed = p.optimistic
			v.RequestID = p.requestID
			if p.queued != nil {
				q := *p.queued
				v.Queued = &q
			}
		case PhaseFailed:
			if p.err != nil {
				v.Error = p.err.Error()
			}
		}
	}
	v.CanDecrement = v.Displayed >= Step
	return v
}
