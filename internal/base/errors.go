// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package base

import "github.com/cockroachdb/errors"

// InvariantError wraps errors due to internal constraint violations. An
// InvariantError signals a bug: the caller should not attempt to recover
// from it beyond aborting the current operation.
type InvariantError struct {
	Err error
}

// Unwrap returns the wrapped descriptive error that describes the violated
// constraint.
func (i InvariantError) Unwrap() error {
	return i.Err
}

// Error implements the error interface.
func (i InvariantError) Error() string {
	return i.Err.Error()
}

// NewInvariantError builds an InvariantError from a formatted message.
func NewInvariantError(format string, args ...interface{}) error {
	return InvariantError{Err: errors.Newf(format, args...)}
}

// ErrTooManyUniqueValues is returned by the segment encoder when the number
// of distinct non-null values in a value segment would meet or exceed
// InvalidValueID, leaving no room for the null sentinel.
var ErrTooManyUniqueValues = errors.New("hyrise: value segment has too many unique values")

// ErrRowOutOfRange is returned when a row index is not within [0, N).
var ErrRowOutOfRange = errors.New("hyrise: row index out of range")

// ErrValueIDOutOfRange is returned when a value id is not within [0, U).
var ErrValueIDOutOfRange = errors.New("hyrise: value id out of range")
