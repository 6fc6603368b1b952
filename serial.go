// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import "code.hybscloud.com/atomix"

// Serial is a process-unique identifier shared by channels and threads.
// It shows up in logs and is handy for telling endpoints apart.
type Serial = uint32

var serials atomix.Uint32

func nextSerial() Serial {
	return serials.Add(1)
}

// idSource allocates message ids for one direction of a channel.
// Zero is never issued, so a zero ID always means "not yet assigned".
type idSource struct {
	last atomix.Uint32
}

func (s *idSource) next() uint32 {
	for {
		if id := s.last.Add(1); id != 0 {
			return id
		}
	}
}
