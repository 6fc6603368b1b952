// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import "errors"

var (
	// ErrShuttingDown is returned when the process shutdown signal was set
	// before or during a blocking send.
	ErrShuttingDown = errors.New("syncipc: shutting down")
	// ErrTimeout is returned when no reply arrived within the call's bound.
	// A reply arriving later is dropped.
	ErrTimeout = errors.New("syncipc: timed out waiting for reply")
	// ErrMalformedReply is returned when the reply arrived but the
	// deserializer rejected its payload.
	ErrMalformedReply = errors.New("syncipc: malformed reply")
	// ErrTransportRejected is returned when the transport refused the
	// outgoing message. No wait is performed.
	ErrTransportRejected = errors.New("syncipc: transport rejected message")
	// ErrChannelClosed is returned when the channel was closed, or its
	// transport failed, before the reply arrived.
	ErrChannelClosed = errors.New("syncipc: channel closed")
	// ErrCallFailed is wrapped, together with ErrMalformedReply, when the
	// peer's handler failed or the peer had no handler for the call.
	ErrCallFailed = errors.New("syncipc: remote call failed")
	// ErrShapeMismatch is wrapped by deserializers whose payload does not
	// decode into the expected values.
	ErrShapeMismatch = errors.New("syncipc: reply shape mismatch")
)

// Outcome is the state of a PendingCall.
// Pending is the only non-terminal state.
type Outcome uint8

const (
	Pending Outcome = iota
	Completed
	MalformedReply
	TimedOut
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	case MalformedReply:
		return "malformed-reply"
	case TimedOut:
		return "timed-out"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether no further transition may occur.
func (o Outcome) Terminal() bool {
	return o != Pending
}
