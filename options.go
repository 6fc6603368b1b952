// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

import (
	"log/slog"
	"time"
)

// NoTimeout makes a blocking send wait until its reply, shutdown, or
// channel closure. Only channels built WithAllowNoTimeout accept it.
const NoTimeout time.Duration = 0

// Config is the per-channel configuration. It is read-only once the
// channel is built.
type Config struct {
	// AllowNoTimeout permits blocking sends with NoTimeout.
	AllowNoTimeout bool
	// RestrictDispatch keeps reentrant dispatch on this channel: while it
	// is blocked it runs only its own incoming calls, and its incoming
	// calls run only while it is itself blocked (or from the message loop).
	RestrictDispatch bool
	// PumpMessages lets a send blocked on this channel also deliver queued
	// async messages, not only incoming calls.
	PumpMessages bool
	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Option configures a Channel.
type Option func(*Config)

// WithAllowNoTimeout permits blocking sends with NoTimeout.
func WithAllowNoTimeout(v bool) Option {
	return func(c *Config) { c.AllowNoTimeout = v }
}

// WithRestrictDispatch sets Config.RestrictDispatch.
func WithRestrictDispatch(v bool) Option {
	return func(c *Config) { c.RestrictDispatch = v }
}

// WithPumpMessages sets Config.PumpMessages.
func WithPumpMessages(v bool) Option {
	return func(c *Config) { c.PumpMessages = v }
}

// WithLogger sets the channel's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
