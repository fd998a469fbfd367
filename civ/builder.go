// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package civ

import "golang.org/x/exp/constraints"

// maxOf returns the largest element of values, or the zero value if values
// is empty. Adapted from the teacher's computeMinMax in sstable/colblk,
// generalized (single bound, any integer width) for the one-off max-scan
// Finish needs.
func maxOf[T constraints.Integer](values []T) T {
	var max T
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

// Builder accumulates a sequence of uint32 values and, on Finish, packs
// them into an immutable CIV using the narrowest width that fits. It plays
// the same role as the teacher's UintBuilder: a mutable accumulation phase
// with an explicit Finish that performs the width decision once.
type Builder struct {
	values []uint32
}

// NewBuilder returns a Builder ready for use.
func NewBuilder() *Builder {
	return &Builder{}
}

// Reset clears the builder, retaining its backing array for reuse.
func (b *Builder) Reset() {
	b.values = b.values[:0]
}

// Len returns the number of rows set so far (the high-water mark of Set,
// not the count of non-zero entries).
func (b *Builder) Len() int {
	return len(b.values)
}

// Get returns the value previously Set at row. row must be < Len().
func (b *Builder) Get(row int) uint32 {
	return b.values[row]
}

// Set sets the value of row to v, growing the backing array as necessary.
// Rows between the previous high-water mark and row are zero-filled.
func (b *Builder) Set(row int, v uint32) {
	if row >= len(b.values) {
		grown := make([]uint32, row+1)
		copy(grown, b.values)
		b.values = grown
	}
	b.values[row] = v
}

// Append sets the value one past the current high-water mark and returns
// its row index.
func (b *Builder) Append(v uint32) int {
	row := len(b.values)
	b.values = append(b.values, v)
	return row
}

// Finish packs the accumulated values into an immutable CIV, scanning the
// values to determine the minimal width.
func (b *Builder) Finish() *CIV {
	return b.FinishWithMax(maxOf(b.values))
}

// FinishWithMax packs the accumulated values into an immutable CIV using
// the width required to represent maxValue, without rescanning the values.
// This is the path package vsds uses: it always knows the upper bound
// (blob length for A_off, unique-value count for A_vid) ahead of time.
func (b *Builder) FinishWithMax(maxValue uint32) *CIV {
	w := WidthFor(uint64(maxValue))
	length := len(b.values)
	data := pack(length, w, func(i int) uint32 { return b.values[i] })
	return &CIV{width: w, length: length, data: data}
}

// Build packs values directly into an immutable CIV using the width
// required to represent maxValue. It is a convenience one-shot form of
// Builder for callers that already hold a complete slice.
func Build(values []uint32, maxValue uint32) *CIV {
	w := WidthFor(uint64(maxValue))
	data := pack(len(values), w, func(i int) uint32 { return values[i] })
	return &CIV{width: w, length: len(values), data: data}
}
