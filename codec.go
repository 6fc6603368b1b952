// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Marshal encodes v as a msgpack payload.
func Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// DecodeInto returns a Deserializer that decodes a msgpack reply into out.
// A payload that does not decode is reported as ErrShapeMismatch.
func DecodeInto[T any](out *T) Deserializer {
	return DeserializerFunc(func(payload []byte) error {
		if err := msgpack.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%w: %w", ErrShapeMismatch, err)
		}
		return nil
	})
}

// Call encodes req, sends it as a call of type typ on ch and decodes the
// reply as Resp. Errors are those of SendSync, or the encoding error.
func Call[Req, Resp any](ch *Channel, typ uint32, req Req, timeout time.Duration) (Resp, error) {
	var resp Resp
	payload, err := msgpack.Marshal(req)
	if err != nil {
		return resp, err
	}
	if err := ch.SendSync(Message{Type: typ, Payload: payload}, DecodeInto(&resp), timeout); err != nil {
		var zero Resp
		return zero, err
	}
	return resp, nil
}

// HandleCall adapts a typed handler to CallFunc. The request is decoded
// from msgpack and the response encoded back.
func HandleCall[Req, Resp any](fn func(ch *Channel, req Req) (Resp, error)) CallFunc {
	return func(ch *Channel, msg Message) ([]byte, error) {
		var req Req
		if err := msgpack.Unmarshal(msg.Payload, &req); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
		}
		resp, err := fn(ch, req)
		if err != nil {
			return nil, err
		}
		return msgpack.Marshal(resp)
	}
}
