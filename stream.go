// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Stream is a Transport over a byte stream such as a net.Conn or a pipe
// to another process. Messages are self-delimiting msgpack values.
type Stream struct {
	rwc io.ReadWriteCloser
	dec *msgpack.Decoder
	wmu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewStream wraps rwc. The stream owns rwc from now on.
func NewStream(rwc io.ReadWriteCloser) *Stream {
	return &Stream{
		rwc: rwc,
		dec: msgpack.NewDecoder(rwc),
	}
}

// Send implements Transport. Each message is written with a single Write so
// concurrent senders never interleave.
func (s *Stream) Send(msg Message) error {
	b, err := msgpack.Marshal(&msg)
	if err != nil {
		return err
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err = s.rwc.Write(b)
	return err
}

// Start implements Transport.
func (s *Stream) Start(recv func(Message), closed func(error)) {
	go s.readLoop(recv, closed)
}

// readLoop is the only reader of rwc. Any decode error ends it, including
// the one caused by Close.
func (s *Stream) readLoop(recv func(Message), closed func(error)) {
	for {
		var msg Message
		if err := s.dec.Decode(&msg); err != nil {
			if closed != nil {
				closed(err)
			}
			return
		}
		recv(msg)
	}
}

// Close implements Transport.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.rwc.Close()
	})
	return s.closeErr
}
