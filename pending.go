// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import "time"

// PendingCall is the record of one outstanding blocking send.
// It lives on exactly one CallContext stack from BeginCall to EndCall.
// outcome and cause are guarded by the owning context's mutex.
type PendingCall struct {
	ctx     *CallContext
	id      uint32
	d       Deserializer
	timeout time.Duration
	done    chan struct{}

	outcome Outcome
	cause   error
}

func newPendingCall(ctx *CallContext, id uint32, d Deserializer, timeout time.Duration) *PendingCall {
	if d == nil {
		d = discardReply
	}
	return &PendingCall{
		ctx:     ctx,
		id:      id,
		d:       d,
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// ID returns the message id whose reply this call awaits.
func (pc *PendingCall) ID() uint32 {
	return pc.id
}

// Timeout returns the bound given to BeginCall. NoTimeout means none.
func (pc *PendingCall) Timeout() time.Duration {
	return pc.timeout
}

// Outcome returns the current state of the call.
func (pc *PendingCall) Outcome() Outcome {
	pc.ctx.mu.Lock()
	defer pc.ctx.mu.Unlock()
	return pc.outcome
}

// Err returns the error a blocking send reports for this call: nil when
// Completed, ErrTimeout, ErrShuttingDown, ErrChannelClosed, or an error
// wrapping ErrMalformedReply. It returns nil while the call is Pending.
func (pc *PendingCall) Err() error {
	pc.ctx.mu.Lock()
	defer pc.ctx.mu.Unlock()
	if !pc.outcome.Terminal() {
		return nil
	}
	return pc.err()
}

// Done is closed when the call reaches a terminal outcome.
func (pc *PendingCall) Done() <-chan struct{} {
	return pc.done
}

func (pc *PendingCall) isDone() bool {
	select {
	case <-pc.done:
		return true
	default:
		return false
	}
}

// finish moves the call to a terminal outcome. It reports false, and
// changes nothing, if the call is already terminal.
// The caller holds the context mutex.
func (pc *PendingCall) finish(o Outcome, cause error) bool {
	if pc.outcome.Terminal() {
		return false
	}
	pc.outcome = o
	pc.cause = cause
	close(pc.done)
	return true
}

// err maps a terminal outcome to the error surfaced by a blocking send.
// The caller holds the context mutex or has observed Done.
func (pc *PendingCall) err() error {
	switch pc.outcome {
	case Completed:
		return nil
	case MalformedReply:
		return pc.cause
	case TimedOut:
		return ErrTimeout
	case Cancelled:
		if pc.cause != nil {
			return pc.cause
		}
		return ErrShuttingDown
	}
	panic("syncipc: error of a pending call")
}
