// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package vsds

// Dictionary is an iterable, read-only view over a Segment's distinct
// values in dictionary (lexicographic) order. It follows the same
// First/Next/Valid/Value/Close idiom the surrounding storage core uses for
// its scan iterators.
type Dictionary struct {
	seg *Segment
	idx int
}

// First positions the iterator at the first distinct value and reports
// whether the dictionary is non-empty.
func (d *Dictionary) First() bool {
	d.idx = 0
	return d.Valid()
}

// Next advances the iterator and reports whether the new position is
// valid.
func (d *Dictionary) Next() bool {
	d.idx++
	return d.Valid()
}

// Valid reports whether the iterator is positioned at a value.
func (d *Dictionary) Valid() bool {
	return d.idx >= 0 && d.idx < len(d.seg.offsets)
}

// Value returns the string at the iterator's current position. Valid()
// must be true.
func (d *Dictionary) Value() string {
	return d.seg.stringAt(d.seg.offsets[d.idx])
}

// ValueID returns the value id at the iterator's current position.
func (d *Dictionary) ValueID() uint32 {
	return uint32(d.idx)
}

// Close releases the iterator. It exists to match the storage core's
// iterator idiom; Dictionary holds no resources that require explicit
// release.
func (d *Dictionary) Close() {}
