// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"errors"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// pipeCapacity is the bounded capacity of each pipe direction.
const pipeCapacity = 64

// ErrPipeClosed is reported by a Pipe once either end is closed.
var ErrPipeClosed = errors.New("syncipc: pipe closed")

// Pipe is one end of an in-process transport.
// Each direction is a bounded single-producer single-consumer queue: the
// consumer is the receiving end's I/O goroutine, and concurrent senders on
// one end take turns as the single producer under wmu.
type Pipe struct {
	out    *lfq.SPSC[Message]
	in     *lfq.SPSC[Message]
	closed *atomix.Uint32
	wmu    sync.Mutex
}

// pipePair holds both ends, both queues and the shared close counter in a
// single allocation.
type pipePair struct {
	a      Pipe
	b      Pipe
	closed atomix.Uint32
	ab     lfq.SPSC[Message]
	ba     lfq.SPSC[Message]
}

// NewPipe returns a connected pair of in-process transport ends.
// Closing either end closes both.
func NewPipe() (*Pipe, *Pipe) {
	pair := &pipePair{}
	pair.ab.Init(pipeCapacity)
	pair.ba.Init(pipeCapacity)

	pair.a.out, pair.a.in, pair.a.closed = &pair.ab, &pair.ba, &pair.closed
	pair.b.out, pair.b.in, pair.b.closed = &pair.ba, &pair.ab, &pair.closed
	return &pair.a, &pair.b
}

// Send implements Transport. It backs off with iox.Backoff while the
// peer-bound queue is full and fails with ErrPipeClosed after Close.
func (p *Pipe) Send(msg Message) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	var bo iox.Backoff
	for {
		if p.closed.Load() != 0 {
			return ErrPipeClosed
		}
		err := p.out.Enqueue(&msg)
		if err == nil {
			return nil
		}
		if !iox.IsWouldBlock(err) {
			return err
		}
		bo.Wait()
	}
}

// Start implements Transport.
func (p *Pipe) Start(recv func(Message), closed func(error)) {
	go p.ioLoop(recv, closed)
}

// ioLoop drains the inbound queue, backing off when it is empty. After
// Close it delivers what is already queued, then reports ErrPipeClosed.
func (p *Pipe) ioLoop(recv func(Message), closed func(error)) {
	var bo iox.Backoff
	for {
		msg, err := p.in.Dequeue()
		if err == nil {
			bo.Reset()
			recv(msg)
			continue
		}
		if p.closed.Load() != 0 {
			if closed != nil {
				closed(ErrPipeClosed)
			}
			return
		}
		bo.Wait()
	}
}

// Close implements Transport. It never fails.
func (p *Pipe) Close() error {
	p.closed.Add(1)
	return nil
}
