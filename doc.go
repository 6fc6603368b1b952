// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package syncipc provides blocking calls over asynchronous point-to-point
// message channels.
//
// A goroutine sends a call and blocks until the matching reply arrives, while
// still running incoming calls addressed to it, so that two peers calling
// each other synchronously do not deadlock.
//
// # Architecture
//
//   - Transport: [Pipe] pairs two in-process ends over lock-free bounded SPSC
//     queues from [code.hybscloud.com/lfq]; [Stream] frames msgpack messages over
//     any [io.ReadWriteCloser]. Each end has one I/O goroutine that only routes.
//   - Bookkeeping: [CallContext] keeps the stack of [PendingCall] records of a
//     channel. Replies match by id; calls resolve innermost first.
//   - Reentrancy: a [Thread] is the token of the goroutine that owns channels.
//     The [Registry] knows which threads are blocked, and a blocked thread runs
//     the incoming calls queued for it while it waits. [WithRestrictDispatch]
//     confines that to the channel it is blocked on.
//   - Shutdown: a single [Shutdown] signal cancels every pending call and
//     makes new ones fail fast with [ErrShuttingDown].
//
// # Outcomes
//
// [Channel.SendSync] returns nil, or [ErrShuttingDown], [ErrTimeout],
// [ErrChannelClosed], or an error wrapping [ErrMalformedReply] or
// [ErrTransportRejected]. A failed handler on the peer is reported as
// [ErrMalformedReply] wrapping [ErrCallFailed]. A reply arriving after a
// timeout is dropped.
//
// # Protocols
//
// Sequences of calls compose as effects on [code.hybscloud.com/kont]:
// [CallBind], [PostThen], [Done], evaluated by [Exec].
//
// # Example
//
//	reg, sd := syncipc.NewRegistry(), syncipc.NewShutdown()
//	a, b := syncipc.NewPipe()
//	server := reg.NewThread()
//	mux := syncipc.NewMux()
//	mux.HandleCall(1, syncipc.HandleCall(func(_ *syncipc.Channel, n int) (int, error) {
//		return n * 2, nil
//	}))
//	syncipc.NewChannel(b, server, sd, mux)
//	go server.Run(ctx)
//
//	ch := syncipc.NewChannel(a, reg.NewThread(), sd, nil)
//	v, err := syncipc.Call[int, int](ch, 1, 21, time.Second) // v == 42
package syncipc
