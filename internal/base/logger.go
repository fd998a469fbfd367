// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package base

import (
	"fmt"
	"log"
	"os"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger struct{}

// Infof implements Logger.
func (DefaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf implements Logger.
func (DefaultLogger) Fatalf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// componentLogger decorates a Logger with a fixed component tag, so a
// diagnostic emitted from deep inside civ, vsds, or mvcc carries the name of
// the package that raised it without every call site having to spell it out
// in its own format string.
type componentLogger struct {
	name string
	Logger
}

// WithComponent returns a Logger that prefixes every message with
// "name: ". A nil logger defaults to DefaultLogger{} before wrapping, so
// callers can pass through whatever they were given (including nil)
// unconditionally.
func WithComponent(logger Logger, name string) Logger {
	if logger == nil {
		logger = DefaultLogger{}
	}
	return componentLogger{name: name, Logger: logger}
}

// Infof implements Logger.
func (c componentLogger) Infof(format string, args ...interface{}) {
	c.Logger.Infof(c.name+": "+format, args...)
}

// Fatalf implements Logger.
func (c componentLogger) Fatalf(format string, args ...interface{}) {
	c.Logger.Fatalf(c.name+": "+format, args...)
}
