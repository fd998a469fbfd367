// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package vsds

import (
	"sort"

	"github.com/cockroachdb/swiss"

	"github.com/phkeese/hyrise/civ"
	"github.com/phkeese/hyrise/internal/base"
)

// ValueSegment is the mutable input to the segment encoder: an ordered
// sequence of (value, is_null) rows. The value at a null row is ignored.
type ValueSegment struct {
	values []string
	nulls  []bool
}

// NewValueSegment returns an empty ValueSegment ready for Append calls.
func NewValueSegment() *ValueSegment {
	return &ValueSegment{}
}

// Append adds a row to the value segment. If isNull is true, value is
// ignored.
func (v *ValueSegment) Append(value string, isNull bool) {
	if isNull {
		value = ""
	}
	v.values = append(v.values, value)
	v.nulls = append(v.nulls, isNull)
}

// Len returns the number of rows appended so far.
func (v *ValueSegment) Len() int { return len(v.values) }

// EncodeSegment builds an immutable Segment from a mutable ValueSegment,
// implementing the encoder algorithm from the column-storage
// specification:
//
//  1. collect, deduplicate and lexicographically sort all non-null values;
//  2. concatenate them into a NUL-terminated blob, recording each value's
//     starting offset;
//  3. define the null offset sentinel as the blob's length;
//  4. translate every row into an offset-form attribute vector entry;
//  5. compress the attribute vector as a CIV whose maximum value is the
//     blob length (so the null sentinel always fits).
func EncodeSegment(v *ValueSegment) (*Segment, error) {
	var unique swiss.Map[string, struct{}]
	unique.Init(v.Len())
	for i, isNull := range v.nulls {
		if !isNull {
			unique.Put(v.values[i], struct{}{})
		}
	}

	sorted := make([]string, 0, unique.Len())
	unique.All(func(s string, _ struct{}) bool {
		sorted = append(sorted, s)
		return true
	})
	sort.Strings(sorted)

	u := len(sorted)
	if uint64(u) >= uint64(InvalidValueID) {
		return nil, base.ErrTooManyUniqueValues
	}

	offsets := make([]uint32, u)
	var valueToOffset swiss.Map[string, uint32]
	valueToOffset.Init(u)
	var blob []byte
	for i, s := range sorted {
		offsets[i] = uint32(len(blob))
		valueToOffset.Put(s, offsets[i])
		blob = append(blob, s...)
		blob = append(blob, 0)
	}
	nullSentinel := uint32(len(blob))

	attrBuilder := civ.NewBuilder()
	for r := 0; r < v.Len(); r++ {
		if v.nulls[r] {
			attrBuilder.Set(r, nullSentinel)
			continue
		}
		off, _ := valueToOffset.Get(v.values[r])
		attrBuilder.Set(r, off)
	}
	attrOff := attrBuilder.FinishWithMax(nullSentinel)

	return NewSegment(blob, offsets, attrOff, nil), nil
}
