// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package mvcc implements the per-row visibility gate and the process-wide
// transaction manager that assigns monotonic transaction and commit ids and
// enforces snapshot isolation over chunks owned elsewhere (package chunk).
package mvcc

import "math"

// CommitID identifies the point in the commit order at which a row's
// insertion or deletion became (or will become) visible.
type CommitID uint64

// TransactionID identifies a transaction.
type TransactionID uint64

const (
	// UnsetCommitID is the begin_cid recorded for rows that were present
	// as part of a chunk's initial, pre-loaded data: visible "since the
	// beginning of time," to every snapshot.
	UnsetCommitID CommitID = 0

	// MaxCommitID is the end_cid recorded for a row that has never been
	// deleted (or whose delete has not even begun).
	MaxCommitID CommitID = math.MaxUint64 - 1

	// PendingCommitID marks a begin_cid or end_cid whose real commit id
	// has not been assigned yet because the owning transaction has not
	// committed. It is reserved above MaxCommitID so it always compares
	// greater than every real snapshot and every real commit id, while
	// remaining distinguishable from MaxCommitID itself: that
	// distinction is what lets the visibility predicate tell "never
	// deleted" apart from "being deleted right now, by someone."
	PendingCommitID CommitID = math.MaxUint64

	// InvalidTransactionID marks a row that is not currently locked by
	// any in-flight transaction: either it has never been touched, or
	// the transaction that touched it has already committed.
	InvalidTransactionID TransactionID = 0
)
