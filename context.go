// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// CallContext holds the outstanding-call bookkeeping of one channel endpoint.
//
// Blocking sends push a PendingCall and pop it when they return. Sends nest
// when a handler dispatched during a wait issues its own blocking send, so
// the calls form a stack: the top is always the call currently blocking the
// owning thread. Replies are matched by id against every frame, while frames
// are popped strictly innermost first.
//
// The stack is shared between the owning thread and the transport's I/O
// goroutine; every mutation happens under mu. restrict and pump are fixed
// at construction.
type CallContext struct {
	mu     sync.Mutex
	stack  []*PendingCall
	closed error

	ch       *Channel
	thread   *Thread
	shutdown *Shutdown
	restrict bool
	pump     bool
	log      *slog.Logger
}

func newCallContext(ch *Channel, th *Thread, sd *Shutdown, cfg *Config) *CallContext {
	return &CallContext{
		ch:       ch,
		thread:   th,
		shutdown: sd,
		restrict: cfg.RestrictDispatch,
		pump:     cfg.PumpMessages,
		log:      ch.log,
	}
}

// BeginCall pushes a new pending call awaiting the reply to id.
// It fails with ErrShuttingDown once shutdown is signaled, and with the
// cancellation cause once CancelAll has run.
func (c *CallContext) BeginCall(id uint32, d Deserializer, timeout time.Duration) (*PendingCall, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown.IsSet() {
		return nil, ErrShuttingDown
	}
	if c.closed != nil {
		return nil, c.closed
	}
	pc := newPendingCall(c, id, d, timeout)
	c.stack = append(c.stack, pc)
	return pc, nil
}

// EndCall pops pc and returns its outcome.
// pc must be the innermost call; anything else is a bug in the caller and
// panics.
func (c *CallContext) EndCall(pc *PendingCall) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.stack)
	if n == 0 || c.stack[n-1] != pc {
		panic("syncipc: EndCall on a call that is not the innermost")
	}
	c.stack[n-1] = nil
	c.stack = c.stack[:n-1]
	return pc.outcome
}

// Depth returns the number of calls on the stack.
func (c *CallContext) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stack)
}

// OnMessageReceived routes one inbound message. It runs on the transport's
// I/O goroutine and never executes listener code.
//
// A reply completes the pending call with the same id, wherever it sits in
// the stack; late, duplicate and unmatched replies are dropped. A failure
// reply ends the call as MalformedReply without running its deserializer. Calls and
// async messages are queued on the owning thread, which runs them either
// from a blocked SendSync or from its message loop.
func (c *CallContext) OnMessageReceived(msg Message) {
	switch msg.Kind {
	case KindReply, KindReplyError:
		c.complete(msg)
	case KindCall, KindAsync:
		c.thread.enqueue(c, msg)
	default:
		c.log.Debug("dropping message of unknown kind", "id", msg.ID, "kind", msg.Kind)
	}
}

func (c *CallContext) complete(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.stack) - 1; i >= 0; i-- {
		pc := c.stack[i]
		if pc.id != msg.ID {
			continue
		}
		if pc.outcome.Terminal() {
			c.log.Debug("discarding late reply", "id", msg.ID, "outcome", pc.outcome)
			return
		}
		if i != len(c.stack)-1 {
			c.log.Debug("reply completed an outer call", "id", msg.ID, "depth", len(c.stack)-i)
		}
		if msg.Kind == KindReplyError {
			pc.finish(MalformedReply, fmt.Errorf("%w: %w: %s", ErrMalformedReply, ErrCallFailed, msg.Payload))
			return
		}
		if err := pc.d.Apply(msg.Payload); err != nil {
			pc.finish(MalformedReply, fmt.Errorf("%w: %w", ErrMalformedReply, err))
			return
		}
		pc.finish(Completed, nil)
		return
	}
	c.log.Debug("discarding unmatched reply", "id", msg.ID)
}

// CancelAll marks every pending call Cancelled with reason and makes later
// BeginCall fail with it. A nil reason means ErrShuttingDown.
// Calls already terminal are left alone, so repeated calls are harmless.
func (c *CallContext) CancelAll(reason error) {
	if reason == nil {
		reason = ErrShuttingDown
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed == nil {
		c.closed = reason
	}
	n := 0
	for _, pc := range c.stack {
		if pc.finish(Cancelled, reason) {
			n++
		}
	}
	if n > 0 {
		c.log.Debug("cancelled pending calls", "count", n, "reason", reason)
	}
}

// Expire marks pc TimedOut. Only the goroutine waiting on pc calls it.
// It reports false if pc had already reached a terminal outcome.
func (c *CallContext) Expire(pc *PendingCall) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pc.finish(TimedOut, nil)
}

func (c *CallContext) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *CallContext) cancel(pc *PendingCall, cause error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pc.finish(Cancelled, cause)
}

// eligible reports whether an incoming message queued by from may be run by
// a thread blocked on c.
func (c *CallContext) eligible(from *CallContext, kind Kind) bool {
	if kind != KindCall {
		return c.pump
	}
	if from == c {
		return true
	}
	return !from.restrict && !c.restrict
}
