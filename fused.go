// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"time"

	"code.hybscloud.com/kont"
)

// CallBind calls typ with req and passes the decoded reply to f.
// Fuses Perform(CallOp[T]{...}) + Bind.
func CallBind[T, B any](typ uint32, req any, timeout time.Duration, f func(T) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(CallOp[T]{Type: typ, Request: req, Timeout: timeout}), f)
}

// PostThen posts v as an async message of type typ and continues with next.
// Fuses Perform(PostOp{...}) + Then.
func PostThen[B any](typ uint32, v any, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(PostOp{Type: typ, Value: v}), next)
}

// Done ends a protocol with a.
func Done[A any](a A) kont.Eff[A] {
	return kont.Pure(a)
}
