// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package mvcc

import "github.com/cockroachdb/errors"

// ErrConflict is raised by a chunk's read-write operations when a
// write-write conflict is detected: the row is already locked by another
// in-flight transaction, or has already been marked for deletion. It
// surfaces to the caller as RollbackReason::Conflict; the transaction must
// roll back.
var ErrConflict = errors.New("hyrise: mvcc write-write conflict")

// ErrTransactionFinished is returned by Commit/Rollback when called on a
// TransactionContext that has already committed or rolled back.
var ErrTransactionFinished = errors.New("hyrise: transaction has already committed or rolled back")

// ErrRowOutOfRange is returned when a row index is not within a chunk's
// bounds.
var ErrRowOutOfRange = errors.New("hyrise: row index out of range")
