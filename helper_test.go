// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/syncipc"
)

// nopTransport accepts every message and delivers nothing.
// Tests drive CallContext.OnMessageReceived by hand on top of it.
type nopTransport struct {
	mu   sync.Mutex
	sent []syncipc.Message
	err  error
}

func (t *nopTransport) Send(msg syncipc.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *nopTransport) Start(func(syncipc.Message), func(error)) {}

func (t *nopTransport) Close() error { return nil }

func reply(id uint32, payload []byte) syncipc.Message {
	return syncipc.Message{ID: id, Kind: syncipc.KindReply, Payload: payload}
}

// counter is a Deserializer that counts its invocations.
type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Apply([]byte) error {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return nil
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// detached returns a channel whose transport never delivers anything.
func detached(t *testing.T, sd *syncipc.Shutdown, opts ...syncipc.Option) *syncipc.Channel {
	t.Helper()
	ch := syncipc.NewChannel(&nopTransport{}, syncipc.NewRegistry().NewThread(), sd, nil, opts...)
	t.Cleanup(func() { ch.Close() })
	return ch
}

// streamPair connects two channels over net.Pipe.
func streamPair(t testing.TB, thA, thB *syncipc.Thread, sd *syncipc.Shutdown, la, lb syncipc.Listener, opts ...syncipc.Option) (*syncipc.Channel, *syncipc.Channel) {
	t.Helper()
	ca, cb := net.Pipe()
	a := syncipc.NewChannel(syncipc.NewStream(ca), thA, sd, la, opts...)
	b := syncipc.NewChannel(syncipc.NewStream(cb), thB, sd, lb, opts...)
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

// runThread runs th's message loop on a new goroutine until the test ends.
func runThread(t testing.TB, th *syncipc.Thread) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		th.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// waitFor polls cond until it holds or the test gives up.
func waitFor(t testing.TB, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// doubler answers calls of type 1 with twice the request.
func doubler() *syncipc.Mux {
	mux := syncipc.NewMux()
	mux.HandleCall(1, syncipc.HandleCall(func(_ *syncipc.Channel, n int) (int, error) {
		return n * 2, nil
	}))
	return mux
}

// orderLog records events from several goroutines.
type orderLog struct {
	mu     sync.Mutex
	events []string
}

func (l *orderLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *orderLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *orderLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
