// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"context"
	"sync"
)

// Registry tracks which threads are blocked inside SendSync, so that calls
// arriving for a blocked thread are run by that thread while it waits
// instead of waiting behind it.
//
// Create one Registry at process start and derive every Thread from it.
// A wait is registered while, and only while, its SendSync is blocked.
type Registry struct {
	mu      sync.Mutex
	blocked map[*Thread][]*waiter
}

// waiter is one blocked SendSync.
type waiter struct {
	ctx  *CallContext
	call *PendingCall
}

// incoming is a message waiting to be run on its channel's thread.
type incoming struct {
	ctx *CallContext
	msg Message
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{blocked: make(map[*Thread][]*waiter)}
}

// NewThread returns a thread token bound to r.
func (r *Registry) NewThread() *Thread {
	return &Thread{
		reg:    r,
		serial: nextSerial(),
		wake:   make(chan struct{}, 1),
	}
}

// Blocked returns how many nested SendSync calls t is currently inside.
func (r *Registry) Blocked(t *Thread) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blocked[t])
}

func (r *Registry) register(t *Thread, w *waiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.blocked[t] {
		if x.call == w.call {
			panic("syncipc: call registered twice in dispatch registry")
		}
	}
	r.blocked[t] = append(r.blocked[t], w)
	for _, it := range t.inbox {
		if w.ctx.eligible(it.ctx, it.msg.Kind) {
			t.signal()
			break
		}
	}
}

func (r *Registry) unregister(t *Thread, w *waiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.blocked[t]
	n := len(ws)
	if n == 0 || ws[n-1] != w {
		panic("syncipc: unregistering a wait that is not the innermost on its thread")
	}
	if n == 1 {
		delete(r.blocked, t)
	} else {
		ws[n-1] = nil
		r.blocked[t] = ws[:n-1]
	}
	// Whatever this wait left behind now belongs to the outer wait or to
	// the thread's message loop.
	if len(t.inbox) > 0 {
		t.signal()
	}
}

// pop removes the oldest queued message of t that w may run, or the oldest
// message at all when w is nil.
func (r *Registry) pop(t *Thread, w *waiter) (incoming, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range t.inbox {
		if w != nil && !w.ctx.eligible(it.ctx, it.msg.Kind) {
			continue
		}
		copy(t.inbox[i:], t.inbox[i+1:])
		t.inbox[len(t.inbox)-1] = incoming{}
		t.inbox = t.inbox[:len(t.inbox)-1]
		return it, true
	}
	return incoming{}, false
}

// Thread is the token of a goroutine that owns channels.
//
// Listener code of a channel runs only on the goroutine acting as its
// thread: from Run or Dispatch, or from inside a SendSync issued on that
// goroutine, which runs eligible incoming calls while it waits. Blocking
// sends on channels of one Thread must be issued from that goroutine.
type Thread struct {
	reg    *Registry
	serial Serial
	wake   chan struct{}

	// guarded by reg.mu
	inbox []incoming
}

// Serial returns the thread's process-unique serial.
func (t *Thread) Serial() Serial {
	return t.serial
}

// Pending returns the number of queued messages not yet dispatched.
func (t *Thread) Pending() int {
	t.reg.mu.Lock()
	defer t.reg.mu.Unlock()
	return len(t.inbox)
}

// Dispatch runs every queued message in arrival order without waiting for
// more, and returns how many it ran.
func (t *Thread) Dispatch() int {
	n := 0
	for {
		it, ok := t.reg.pop(t, nil)
		if !ok {
			return n
		}
		it.ctx.ch.dispatch(it.msg)
		n++
	}
}

// Run is the thread's message loop. It dispatches queued messages as they
// arrive until ctx is done, and returns ctx.Err().
func (t *Thread) Run(ctx context.Context) error {
	for {
		t.Dispatch()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.wake:
		}
	}
}

func (t *Thread) enqueue(c *CallContext, msg Message) {
	t.reg.mu.Lock()
	t.inbox = append(t.inbox, incoming{ctx: c, msg: msg})
	t.reg.mu.Unlock()
	t.signal()
}

func (t *Thread) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// dispatchBlocked runs queued messages eligible for w, oldest first, until
// none is left or w's own reply has arrived.
func (t *Thread) dispatchBlocked(w *waiter) {
	for !w.call.isDone() {
		it, ok := t.reg.pop(t, w)
		if !ok {
			return
		}
		it.ctx.ch.dispatch(it.msg)
	}
}
