// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package mvcc

import (
	"sync"

	"github.com/phkeese/hyrise/internal/invariants"
)

// ChunkMetadata is a concrete, mutable, row-indexed store of per-row MVCC
// metadata for one chunk. It is the "per-chunk metadata owned externally
// but protocol-defined here" referenced by the visibility gate: a real
// table-scan operator (package chunk) reads through it, and RW operators
// (Insert/Delete, modeled here as MarkForInsert/MarkForDelete) mutate it
// under transactional control.
//
// A ChunkMetadata protects its rows with a single RWMutex. Hold times are
// intentionally short: a row read or a single-row mark/commit/unwind, never
// more.
type ChunkMetadata struct {
	mu   sync.RWMutex
	rows []RowMetadata
}

// NewChunkMetadata returns metadata for n rows of pre-loaded (already
// committed, "since the beginning of time") data.
func NewChunkMetadata(n int) *ChunkMetadata {
	rows := make([]RowMetadata, n)
	for i := range rows {
		rows[i] = loadedRowMetadata()
	}
	return &ChunkMetadata{rows: rows}
}

// Len returns the number of rows tracked.
func (c *ChunkMetadata) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Get returns a copy of the metadata for row r.
func (c *ChunkMetadata) Get(r int) (RowMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r < 0 || r >= len(c.rows) {
		return RowMetadata{}, ErrRowOutOfRange
	}
	return c.rows[r], nil
}

// Visible reports whether row r is visible to a reader with the given
// snapshot and transaction id.
func (c *ChunkMetadata) Visible(r int, snapshot CommitID, txID TransactionID) (bool, error) {
	row, err := c.Get(r)
	if err != nil {
		return false, err
	}
	return row.Visible(snapshot, txID), nil
}

// RowMark captures enough prior state about a row to Unwind a
// MarkForInsert/MarkForDelete call on rollback.
type RowMark struct {
	chunk   *ChunkMetadata
	row     int
	prior   RowMetadata
	inserts bool // true if this mark represents a freshly appended row
}

// Unwind reverts the effect of the MarkFor* call that produced this mark.
// For an insert, that means restoring the row to its pre-insert state
// (which, since the row did not exist before, is simply re-marking it as
// not locked by anyone -- a rolled-back insert is never made visible to
// any snapshot). For a delete, it restores the row's exact prior metadata.
func (m RowMark) Unwind() {
	m.chunk.mu.Lock()
	defer m.chunk.mu.Unlock()
	invariants.CheckBounds(m.row, len(m.chunk.rows))
	if m.inserts {
		// A rolled-back insert must never become visible. Since no reader
		// can have already observed a manufactured row id for it, marking
		// begin_cid back at Pending with an invalid owner satisfies both
		// "no longer owned by the aborted transaction" and "never visible."
		m.chunk.rows[m.row] = RowMetadata{BeginCID: PendingCommitID, EndCID: PendingCommitID, TxID: InvalidTransactionID}
		return
	}
	m.chunk.rows[m.row] = m.prior
}

// MarkForInsert appends a new row locked by txID and returns its row index
// together with a RowMark for rollback. The row is visible to txID
// immediately (even before commit) and invisible to everyone else until
// CommitInsert is called.
func (c *ChunkMetadata) MarkForInsert(txID TransactionID) (row int, mark RowMark) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row = len(c.rows)
	c.rows = append(c.rows, insertedRowMetadata(txID))
	return row, RowMark{chunk: c, row: row, inserts: true}
}

// CommitInsert finalizes a previously marked insert, recording the
// transaction's assigned commit id as the row's begin_cid and releasing
// the row's lock.
func (c *ChunkMetadata) CommitInsert(row int, commitID CommitID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row < 0 || row >= len(c.rows) {
		return ErrRowOutOfRange
	}
	invariants.CheckArg(c.rows[row].BeginCID == PendingCommitID,
		"mvcc: CommitInsert called on row %d not in pending-insert state (begin_cid=%d)", row, c.rows[row].BeginCID)
	c.rows[row].BeginCID = commitID
	c.rows[row].TxID = InvalidTransactionID
	return nil
}

// MarkForDelete locks row for deletion by txID, returning a RowMark for
// rollback. It fails with ErrConflict if the row is already locked by a
// different in-flight transaction, or has already been marked for
// deletion by anyone (including txID itself).
func (c *ChunkMetadata) MarkForDelete(row int, txID TransactionID) (RowMark, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row < 0 || row >= len(c.rows) {
		return RowMark{}, ErrRowOutOfRange
	}
	cur := c.rows[row]
	if cur.TxID != InvalidTransactionID && cur.TxID != txID {
		return RowMark{}, ErrConflict
	}
	if cur.EndCID != MaxCommitID {
		return RowMark{}, ErrConflict
	}
	mark := RowMark{chunk: c, row: row, prior: cur}
	c.rows[row].TxID = txID
	c.rows[row].EndCID = PendingCommitID
	return mark, nil
}

// CommitDelete finalizes a previously marked delete, recording the
// transaction's assigned commit id as the row's end_cid and releasing the
// row's lock.
func (c *ChunkMetadata) CommitDelete(row int, commitID CommitID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row < 0 || row >= len(c.rows) {
		return ErrRowOutOfRange
	}
	invariants.CheckArg(c.rows[row].EndCID == PendingCommitID,
		"mvcc: CommitDelete called on row %d not in pending-delete state (end_cid=%d)", row, c.rows[row].EndCID)
	c.rows[row].EndCID = commitID
	c.rows[row].TxID = InvalidTransactionID
	return nil
}
