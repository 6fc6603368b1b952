// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"code.hybscloud.com/kont"
)

// channelHandler runs channel effects on one channel and short-circuits the
// protocol with Left(err) on the first failing operation.
// Value type: passed to the evaluation loop on the stack.
type channelHandler[R any] struct {
	ch *Channel
}

// Dispatch implements kont.Handler via structural interface assertion.
func (h channelHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	cop, ok := op.(channelDispatcher)
	if !ok {
		panic("syncipc: unhandled effect in channelHandler")
	}
	v, err := cop.DispatchChannel(h.ch)
	if err != nil {
		return kont.Left[error, R](err), false
	}
	return v, true
}

// Exec runs a call protocol on ch from the calling goroutine, which must be
// acting as ch's thread. Each operation blocks like SendSync; the first
// error stops the protocol and is returned.
func Exec[R any](ch *Channel, protocol kont.Eff[R]) (R, error) {
	wrapped := kont.Map[kont.Resumed, R, kont.Either[error, R]](protocol, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	result := kont.Handle(wrapped, channelHandler[R]{ch: ch})
	if err, ok := result.GetLeft(); ok {
		var zero R
		return zero, err
	}
	r, _ := result.GetRight()
	return r, nil
}
