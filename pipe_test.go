// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc_test

import (
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/syncipc"
)

func TestPipeCall(t *testing.T) {
	skipRace(t)
	reg := syncipc.NewRegistry()
	server := reg.NewThread()
	pa, pb := syncipc.NewPipe()
	a := syncipc.NewChannel(pa, reg.NewThread(), nil, nil)
	b := syncipc.NewChannel(pb, server, nil, doubler())
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	runThread(t, server)

	// More calls than one direction of the pipe holds.
	for i := range 200 {
		v, err := syncipc.Call[int, int](a, 1, i, 5*time.Second)
		if err != nil {
			t.Fatalf("Call(%d): %v", i, err)
		}
		if v != 2*i {
			t.Fatalf("Call(%d) got %d, want %d", i, v, 2*i)
		}
	}
}

func TestPipeBurst(t *testing.T) {
	skipRace(t)
	pa, pb := syncipc.NewPipe()
	got := make(chan syncipc.Message, 512)
	pb.Start(func(m syncipc.Message) { got <- m }, nil)
	defer pa.Close()

	const n = 300
	for i := range n {
		if err := pa.Send(syncipc.Message{ID: uint32(i + 1), Kind: syncipc.KindAsync}); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}
	for i := range n {
		select {
		case m := <-got:
			if m.ID != uint32(i+1) {
				t.Fatalf("message %d has id %d", i, m.ID)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("message %d never arrived", i)
		}
	}
}

func TestPipeClose(t *testing.T) {
	skipRace(t)
	reg := syncipc.NewRegistry()
	client := reg.NewThread()
	pa, pb := syncipc.NewPipe()
	a := syncipc.NewChannel(pa, client, nil, nil)
	b := syncipc.NewChannel(pb, reg.NewThread(), nil, nil)
	defer a.Close()

	errc := make(chan error, 1)
	go func() {
		errc <- a.SendSync(syncipc.Message{Type: 1}, nil, 10*time.Second)
	}()
	waitFor(t, "client to block", func() bool { return reg.Blocked(client) == 1 })

	// Closing one end closes both.
	b.Close()
	select {
	case err := <-errc:
		if !errors.Is(err, syncipc.ErrChannelClosed) {
			t.Fatalf("SendSync got %v, want ErrChannelClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SendSync still blocked after the pipe closed")
	}
	select {
	case <-a.Stopped():
	case <-time.After(5 * time.Second):
		t.Fatal("channel not stopped after its pipe closed")
	}
	if err := pa.Send(syncipc.Message{}); !errors.Is(err, syncipc.ErrPipeClosed) {
		t.Fatalf("Send on closed pipe got %v, want ErrPipeClosed", err)
	}
}
