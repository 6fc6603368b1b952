// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"errors"
	"fmt"
	"sync"
)

// Listener receives the inbound traffic of a channel on its thread.
//
// OnCall returns the reply payload. A non-nil error is logged and answered
// with a KindReplyError carrying its text; the caller's SendSync fails with
// ErrCallFailed.
// OnCall may itself issue blocking sends.
type Listener interface {
	OnMessage(ch *Channel, msg Message)
	OnCall(ch *Channel, msg Message) ([]byte, error)
}

// MessageFunc handles an async message.
type MessageFunc func(ch *Channel, msg Message)

// CallFunc handles an incoming call and returns the reply payload.
type CallFunc func(ch *Channel, msg Message) ([]byte, error)

var errNoCallHandler = errors.New("syncipc: no call handler")

// Handlers adapts a pair of functions to Listener. Nil fields drop async
// messages and fail calls.
type Handlers struct {
	Message MessageFunc
	Call    CallFunc
}

// OnMessage calls h.Message if set.
func (h Handlers) OnMessage(ch *Channel, msg Message) {
	if h.Message != nil {
		h.Message(ch, msg)
	}
}

// OnCall calls h.Call if set.
func (h Handlers) OnCall(ch *Channel, msg Message) ([]byte, error) {
	if h.Call == nil {
		return nil, errNoCallHandler
	}
	return h.Call(ch, msg)
}

// Mux is a Listener routing on Message.Type.
type Mux struct {
	mu    sync.RWMutex
	calls map[uint32]CallFunc
	msgs  map[uint32]MessageFunc
}

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{
		calls: make(map[uint32]CallFunc),
		msgs:  make(map[uint32]MessageFunc),
	}
}

// HandleCall registers fn for calls of type typ, replacing any previous one.
func (m *Mux) HandleCall(typ uint32, fn CallFunc) {
	m.mu.Lock()
	m.calls[typ] = fn
	m.mu.Unlock()
}

// HandleMessage registers fn for async messages of type typ.
func (m *Mux) HandleMessage(typ uint32, fn MessageFunc) {
	m.mu.Lock()
	m.msgs[typ] = fn
	m.mu.Unlock()
}

// OnMessage implements Listener. Unknown types are dropped.
func (m *Mux) OnMessage(ch *Channel, msg Message) {
	m.mu.RLock()
	fn := m.msgs[msg.Type]
	m.mu.RUnlock()
	if fn != nil {
		fn(ch, msg)
	}
}

// OnCall implements Listener.
func (m *Mux) OnCall(ch *Channel, msg Message) ([]byte, error) {
	m.mu.RLock()
	fn := m.calls[msg.Type]
	m.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("%w for type %d", errNoCallHandler, msg.Type)
	}
	return fn(ch, msg)
}
