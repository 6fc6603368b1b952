// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/syncipc"
	"github.com/vmihailenco/msgpack/v5"
)

// protocolServer answers type 1 with doubling and records type 5 messages.
func protocolServer(t *testing.T) (*syncipc.Channel, *orderLog) {
	t.Helper()
	reg := syncipc.NewRegistry()
	server := reg.NewThread()
	log := &orderLog{}
	mux := doubler()
	mux.HandleMessage(5, func(_ *syncipc.Channel, msg syncipc.Message) {
		var n int
		msgpack.Unmarshal(msg.Payload, &n)
		log.add(fmt.Sprint(n))
	})
	a, _ := streamPair(t, reg.NewThread(), server, nil, nil, mux)
	runThread(t, server)
	return a, log
}

func TestExecProtocol(t *testing.T) {
	ch, log := protocolServer(t)

	protocol := syncipc.CallBind(1, 3, 5*time.Second, func(v int) kont.Eff[int] {
		return syncipc.PostThen(5, v, syncipc.CallBind(1, v, 5*time.Second, func(w int) kont.Eff[int] {
			return syncipc.Done(w)
		}))
	})
	got, err := syncipc.Exec(ch, protocol)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if got != 12 {
		t.Fatalf("Exec got %d, want 12", got)
	}
	if got, want := log.snapshot(), []string{"6"}; !slices.Equal(got, want) {
		t.Fatalf("posted got %v, want %v", got, want)
	}
}

func TestExecShortCircuits(t *testing.T) {
	ch, log := protocolServer(t)

	reached := false
	protocol := syncipc.CallBind(9, 1, 5*time.Second, func(v int) kont.Eff[int] {
		reached = true
		return syncipc.PostThen(5, v, syncipc.Done(v))
	})
	got, err := syncipc.Exec(ch, protocol)
	if !errors.Is(err, syncipc.ErrMalformedReply) {
		t.Fatalf("Exec got %v, want ErrMalformedReply", err)
	}
	if got != 0 {
		t.Fatalf("Exec result got %d, want zero on error", got)
	}
	if reached {
		t.Fatal("protocol continued after a failed call")
	}

	// A later call on the same channel still round-trips, and the post
	// that was skipped never reached the server.
	if _, err := syncipc.Exec(ch, syncipc.CallBind(1, 2, 5*time.Second, syncipc.Done[int])); err != nil {
		t.Fatalf("Exec after failure: %v", err)
	}
	if got := log.len(); got != 0 {
		t.Fatalf("server saw %d posts, want 0", got)
	}
}

func TestExecPure(t *testing.T) {
	got, err := syncipc.Exec(detached(t, nil), syncipc.Done("ready"))
	if err != nil || got != "ready" {
		t.Fatalf("Exec got (%q, %v), want (ready, nil)", got, err)
	}
}
