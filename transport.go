// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

// Transport moves messages between two connected endpoints.
//
// Send enqueues msg for delivery and must not wait for the peer to process
// it. It may be called from any goroutine.
//
// Start is called once, by NewChannel. It starts the transport's I/O
// goroutine, which calls recv for every inbound message in arrival order
// and, when the transport stops, calls closed exactly once with the cause.
// recv never blocks on application code.
type Transport interface {
	Send(msg Message) error
	Start(recv func(Message), closed func(error))
	Close() error
}
