// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import "sync"

// Shutdown is a process-wide, set-once broadcast condition.
// Create one at process start and pass it to every Channel. Once set it
// stays set: pending blocking sends are cancelled and new ones fail fast
// with ErrShuttingDown.
type Shutdown struct {
	once sync.Once
	done chan struct{}
}

// NewShutdown returns an unset shutdown signal.
func NewShutdown() *Shutdown {
	return &Shutdown{done: make(chan struct{})}
}

// Signal sets the condition. Calling it more than once has no further effect.
func (s *Shutdown) Signal() {
	s.once.Do(func() { close(s.done) })
}

// Done is closed once Signal has been called.
func (s *Shutdown) Done() <-chan struct{} {
	return s.done
}

// IsSet reports whether Signal has been called.
func (s *Shutdown) IsSet() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
