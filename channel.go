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

// Channel is one endpoint of a point-to-point message channel with
// blocking calls.
//
// Post sends without waiting. SendSync sends a call and blocks the calling
// goroutine, which must be acting as the channel's Thread, until the reply
// arrives, the timeout expires, shutdown is signaled, or the channel
// closes. While blocked, the goroutine keeps running incoming calls queued
// on its thread, so two peers calling each other do not deadlock.
type Channel struct {
	serial   Serial
	tr       Transport
	ctx      *CallContext
	thread   *Thread
	shutdown *Shutdown
	listener Listener
	cfg      Config
	log      *slog.Logger
	ids      idSource

	stop      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

// NewChannel binds tr to thread th and starts the transport.
// Inbound traffic goes to l on th. sd is the process shutdown signal; nil
// gives the channel a private one that is never set.
func NewChannel(tr Transport, th *Thread, sd *Shutdown, l Listener, opts ...Option) *Channel {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if sd == nil {
		sd = NewShutdown()
	}
	if l == nil {
		l = Handlers{}
	}
	ch := &Channel{
		serial:   nextSerial(),
		tr:       tr,
		thread:   th,
		shutdown: sd,
		listener: l,
		cfg:      cfg,
		stop:     make(chan struct{}),
	}
	ch.log = cfg.Logger.With("channel", ch.serial, "thread", th.serial)
	ch.ctx = newCallContext(ch, th, sd, &ch.cfg)
	go ch.watchShutdown()
	tr.Start(ch.ctx.OnMessageReceived, ch.onTransportClosed)
	return ch
}

// Serial returns the channel's process-unique serial.
func (ch *Channel) Serial() Serial {
	return ch.serial
}

// Context returns the channel's call bookkeeping.
func (ch *Channel) Context() *CallContext {
	return ch.ctx
}

// Thread returns the thread the channel's listener runs on.
func (ch *Channel) Thread() *Thread {
	return ch.thread
}

// Post sends msg as an async message. It does not wait for the peer.
func (ch *Channel) Post(msg Message) error {
	if err := ch.ctx.closedErr(); err != nil {
		return err
	}
	msg.ID = ch.ids.next()
	msg.Kind = KindAsync
	if err := ch.tr.Send(msg); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportRejected, err)
	}
	return nil
}

// Send is SendSync with NoTimeout.
func (ch *Channel) Send(msg Message, d Deserializer) error {
	return ch.SendSync(msg, d, NoTimeout)
}

// SendSync sends msg as a call and blocks until it resolves.
// The ID and Kind of msg are assigned by the channel. On a reply, d is
// applied to its payload on the I/O goroutine before SendSync returns; d
// may be nil when the reply carries nothing.
//
// The error is nil on success, or one of ErrShuttingDown, ErrTimeout,
// ErrChannelClosed, or an error wrapping ErrMalformedReply or
// ErrTransportRejected. A failed handler on the peer yields ErrMalformedReply
// wrapping ErrCallFailed, whatever d is. A reply arriving after a timeout is dropped.
//
// NoTimeout panics unless the channel allows it.
func (ch *Channel) SendSync(msg Message, d Deserializer, timeout time.Duration) error {
	if ch.shutdown.IsSet() {
		return ErrShuttingDown
	}
	if timeout == NoTimeout && !ch.cfg.AllowNoTimeout {
		panic("syncipc: blocking send without timeout on a channel that does not allow it")
	}
	msg.ID = ch.ids.next()
	msg.Kind = KindCall

	// Push before sending: the reply may race the return of tr.Send.
	pc, err := ch.ctx.BeginCall(msg.ID, d, timeout)
	if err != nil {
		return err
	}
	defer ch.ctx.EndCall(pc)

	if err := ch.tr.Send(msg); err != nil {
		ch.ctx.cancel(pc, ErrTransportRejected)
		return fmt.Errorf("%w: %w", ErrTransportRejected, err)
	}

	w := &waiter{ctx: ch.ctx, call: pc}
	reg := ch.thread.reg
	reg.register(ch.thread, w)
	defer reg.unregister(ch.thread, w)

	ch.wait(w, timeout)
	return pc.Err()
}

// wait blocks until w's call is terminal. The reply is always checked
// before dispatching anything else.
func (ch *Channel) wait(w *waiter, timeout time.Duration) {
	pc := w.call
	var expired <-chan time.Time
	if timeout != NoTimeout {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for !pc.isDone() {
		select {
		case <-pc.done:
		case <-ch.shutdown.Done():
			ch.ctx.cancel(pc, ErrShuttingDown)
		case <-ch.thread.wake:
			ch.thread.dispatchBlocked(w)
		case <-expired:
			ch.ctx.Expire(pc)
		}
	}
}

// Close closes the transport and cancels pending calls with
// ErrChannelClosed. Messages of this channel still queued on its thread
// are dispatched later; their replies fail to send.
func (ch *Channel) Close() error {
	var err error
	ch.closeOnce.Do(func() {
		ch.halt()
		ch.ctx.CancelAll(ErrChannelClosed)
		err = ch.tr.Close()
	})
	return err
}

// halt releases watchShutdown.
func (ch *Channel) halt() {
	ch.stopOnce.Do(func() { close(ch.stop) })
}

// Stopped is closed once the channel is closed, locally or by its
// transport.
func (ch *Channel) Stopped() <-chan struct{} {
	return ch.stop
}

func (ch *Channel) watchShutdown() {
	select {
	case <-ch.shutdown.Done():
		ch.ctx.CancelAll(ErrShuttingDown)
	case <-ch.stop:
	}
}

func (ch *Channel) onTransportClosed(err error) {
	ch.log.Debug("transport closed", "error", err)
	reason := ErrChannelClosed
	if ch.shutdown.IsSet() {
		reason = ErrShuttingDown
	}
	ch.ctx.CancelAll(reason)
	ch.halt()
}

// dispatch runs one inbound message on the current goroutine, which is
// acting as ch's thread.
func (ch *Channel) dispatch(msg Message) {
	if msg.Kind != KindCall {
		ch.listener.OnMessage(ch, msg)
		return
	}
	out := Message{ID: msg.ID, Kind: KindReply, Type: msg.Type}
	reply, err := ch.listener.OnCall(ch, msg)
	if err != nil {
		ch.log.Warn("call handler failed", "id", msg.ID, "type", msg.Type, "error", err)
		out.Kind, reply = KindReplyError, []byte(err.Error())
	}
	out.Payload = reply
	if err := ch.tr.Send(out); err != nil {
		ch.log.Warn("reply not sent", "id", msg.ID, "type", msg.Type, "error", err)
	}
}
