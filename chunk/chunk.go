// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package chunk assembles a column segment and its MVCC row metadata into
// a scannable unit, and provides the scan operators a query plan sits on
// top of.
package chunk

import (
	"github.com/phkeese/hyrise/mvcc"
	"github.com/phkeese/hyrise/vsds"
)

// Chunk pairs one immutable string-dictionary column with the mutable MVCC
// metadata that gates which of its rows are visible to a given reader. A
// real table would hold one Chunk per column per horizontal partition; this
// core models a single column for clarity.
//
// Chunk's row count is fixed at construction to Column.Size(): rows appended
// to Metadata by MarkForInsert beyond that count represent capacity reserved
// for future column data and are not yet scannable through this Chunk. This
// mirrors chunks in a real column store, which pre-allocate row slots up to
// a target chunk size before that range is actually filled and encoded.
type Chunk struct {
	Column   *vsds.Segment
	Metadata *mvcc.ChunkMetadata
}

// New pairs column with freshly created metadata for column.Size() rows, all
// marked as pre-loaded (visible to every snapshot from the start).
func New(column *vsds.Segment) *Chunk {
	return &Chunk{
		Column:   column,
		Metadata: mvcc.NewChunkMetadata(column.Size()),
	}
}

// Rows returns the number of rows this chunk exposes to scans: the smaller
// of the column's row count and Metadata.Len. The column's count is the
// smaller one when rows have been reserved for insertion but not yet
// materialized into the column.
func (c *Chunk) Rows() int {
	n := c.Column.Size()
	if m := c.Metadata.Len(); m < n {
		return m
	}
	return n
}

// Iterator scans a Chunk's rows in order, skipping rows not visible to the
// given snapshot and transaction. It follows the teacher's First/Next/
// Valid/Value/Close idiom for in-process iterators.
type Iterator struct {
	chunk    *Chunk
	snapshot mvcc.CommitID
	txID     mvcc.TransactionID

	row   int
	value vsds.Value
	err   error
	valid bool
}

// Scan returns an Iterator over chunk's rows visible to a reader with the
// given snapshot commit id and transaction id (mvcc.InvalidTransactionID for
// a reader that is not itself an active writer).
func Scan(c *Chunk, snapshot mvcc.CommitID, txID mvcc.TransactionID) *Iterator {
	return &Iterator{chunk: c, snapshot: snapshot, txID: txID, row: -1}
}

// First positions the iterator at the first visible row, if any.
func (it *Iterator) First() bool {
	it.row = -1
	return it.Next()
}

// Next advances to the next visible row. It returns false once there are no
// more rows, or once an error has been recorded (see Error).
func (it *Iterator) Next() bool {
	if it.err != nil {
		it.valid = false
		return false
	}
	n := it.chunk.Rows()
	for it.row++; it.row < n; it.row++ {
		visible, err := it.chunk.Metadata.Visible(it.row, it.snapshot, it.txID)
		if err != nil {
			it.err = err
			it.valid = false
			return false
		}
		if !visible {
			continue
		}
		value, err := it.chunk.Column.OperatorAt(it.row)
		if err != nil {
			it.err = err
			it.valid = false
			return false
		}
		it.value = value
		it.valid = true
		return true
	}
	it.valid = false
	return false
}

// Valid reports whether the iterator is currently positioned on a row.
func (it *Iterator) Valid() bool { return it.valid }

// Row returns the row index the iterator is currently positioned on. Only
// valid to call when Valid returns true.
func (it *Iterator) Row() int { return it.row }

// Value returns the value at the iterator's current position. Only valid to
// call when Valid returns true.
func (it *Iterator) Value() vsds.Value { return it.value }

// Error returns the first error encountered during iteration, if any.
func (it *Iterator) Error() error { return it.err }

// Close releases the iterator. It is a no-op today but is provided so
// callers can use the standard iterator idiom uniformly, and so a future
// version that pools iterators has somewhere to return them.
func (it *Iterator) Close() error { return nil }
