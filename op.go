// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"time"

	"code.hybscloud.com/kont"
)

// channelDispatcher is the structural interface for channel effects.
// DispatchChannel blocks for as long as the underlying send does.
type channelDispatcher interface {
	DispatchChannel(ch *Channel) (kont.Resumed, error)
}

// CallOp is the effect operation for a blocking call returning T.
// Perform(CallOp[T]{...}) encodes Request, sends it with SendSync and
// resumes with the decoded reply.
type CallOp[T any] struct {
	kont.Phantom[T]
	Type    uint32
	Request any
	Timeout time.Duration
}

// DispatchChannel handles CallOp on ch.
func (o CallOp[T]) DispatchChannel(ch *Channel) (kont.Resumed, error) {
	payload, err := Marshal(o.Request)
	if err != nil {
		return nil, err
	}
	var out T
	if err := ch.SendSync(Message{Type: o.Type, Payload: payload}, DecodeInto(&out), o.Timeout); err != nil {
		return nil, err
	}
	return out, nil
}

// PostOp is the effect operation for an async message.
// Perform(PostOp{...}) encodes Value and posts it.
type PostOp struct {
	kont.Phantom[struct{}]
	Type  uint32
	Value any
}

// DispatchChannel handles PostOp on ch. It never waits for the peer.
func (o PostOp) DispatchChannel(ch *Channel) (kont.Resumed, error) {
	payload, err := Marshal(o.Value)
	if err != nil {
		return nil, err
	}
	if err := ch.Post(Message{Type: o.Type, Payload: payload}); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}
