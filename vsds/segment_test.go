// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package vsds

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phkeese/hyrise/civ"
)

func buildSegment(t *testing.T, rows []string, nulls []bool) *Segment {
	t.Helper()
	require.Equal(t, len(rows), len(nulls))
	vs := NewValueSegment()
	for i, r := range rows {
		vs.Append(r, nulls[i])
	}
	seg, err := EncodeSegment(vs)
	require.NoError(t, err)
	return seg
}

// S1 — basic encode/decode.
func TestBasicEncodeDecode(t *testing.T) {
	rows := []string{"Bill", "Steve", "Alexander", "Steve", "Hasso", "Bill"}
	nulls := make([]bool, len(rows))
	seg := buildSegment(t, rows, nulls)

	require.Equal(t, 6, seg.Size())
	require.Equal(t, uint32(4), seg.UniqueValuesCount())

	var dict []string
	d := seg.Dictionary()
	for d.First(); d.Valid(); d.Next() {
		dict = append(dict, d.Value())
	}
	require.Equal(t, []string{"Alexander", "Bill", "Hasso", "Steve"}, dict)

	for i, want := range rows {
		v, err := seg.OperatorAt(i)
		require.NoError(t, err)
		require.False(t, v.Null)
		require.Equal(t, want, v.Str)
	}
}

// S2 — nulls.
func TestNulls(t *testing.T) {
	seg := buildSegment(t, []string{"A", "", "E"}, []bool{false, true, false})
	require.Equal(t, uint32(2), seg.NullValueID())

	v, err := seg.OperatorAt(1)
	require.NoError(t, err)
	require.True(t, v.Null)

	off := seg.AttributeVectorOffsets()
	require.Equal(t, off.Get(1), uint32(len(seg.blob)))
}

// S3 — bounds.
func TestBounds(t *testing.T) {
	seg := buildSegment(t, []string{"A", "C", "E", "G", "I", "K"}, make([]bool, 6))
	require.Equal(t, uint32(2), seg.LowerBound("E"))
	require.Equal(t, uint32(3), seg.UpperBound("E"))
	require.Equal(t, uint32(3), seg.LowerBound("F"))
	require.Equal(t, uint32(3), seg.UpperBound("F"))
	require.Equal(t, InvalidValueID, seg.LowerBound("Z"))
	require.Equal(t, InvalidValueID, seg.UpperBound("Z"))
}

// S4 — mixed lengths forcing width boundary.
func TestWidthBoundary(t *testing.T) {
	a := strings.Repeat("a", 512)
	b := strings.Repeat("b", 512)
	seg := buildSegment(t, []string{a, b}, []bool{false, false})

	off := seg.AttributeVectorOffsets()
	require.Equal(t, byte(2), byte(off.Width()))

	v0, err := seg.OperatorAt(0)
	require.NoError(t, err)
	require.Equal(t, a, v0.Str)
	v1, err := seg.OperatorAt(1)
	require.NoError(t, err)
	require.Equal(t, b, v1.Str)
}

// S5 — trailing empty distinct value is not confused with NULL.
func TestTrailingEmptyDistinct(t *testing.T) {
	rows := []string{"Hello", "World", "Alexander", "String", ""}
	seg := buildSegment(t, rows, make([]bool, len(rows)))

	v, err := seg.OperatorAt(4)
	require.NoError(t, err)
	require.False(t, v.Null)
	require.Equal(t, "", v.Str)
}

// S6-adjacent: all-null segment (U=0 open question).
func TestAllNullSegment(t *testing.T) {
	seg := buildSegment(t, []string{"", "", ""}, []bool{true, true, true})
	require.Equal(t, uint32(0), seg.UniqueValuesCount())
	require.Equal(t, InvalidValueID, seg.LowerBound("anything"))
	require.Equal(t, InvalidValueID, seg.UpperBound("anything"))
	for i := 0; i < seg.Size(); i++ {
		v, err := seg.OperatorAt(i)
		require.NoError(t, err)
		require.True(t, v.Null)
	}
}

// Property: value-id consistency (spec §8, property 3).
func TestValueIDConsistency(t *testing.T) {
	rows := []string{"a", "b", "c", "a", "b"}
	nulls := []bool{false, false, false, true, false}
	seg := buildSegment(t, rows, nulls)

	vid := seg.AttributeVector()
	off := seg.AttributeVectorOffsets()
	for r := 0; r < seg.Size(); r++ {
		if nulls[r] {
			require.Equal(t, seg.NullValueID(), vid.Get(r))
			require.Equal(t, uint32(len(seg.blob)), off.Get(r))
			continue
		}
		id := vid.Get(r)
		typed, err := seg.TypedValueOfValueID(id)
		require.NoError(t, err)
		require.Equal(t, rows[r], typed)
		require.Equal(t, seg.offsets[id], off.Get(r))
	}
}

// Property: lazy materialization idempotence (spec §8, property 5).
func TestAttributeVectorMaterializationIdempotent(t *testing.T) {
	seg := buildSegment(t, []string{"z", "y", "x", "z"}, make([]bool, 4))

	before := seg.MemoryUsage(MemoryUsageFull)

	const goroutines = 16
	results := make([]*civ.CIV, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = seg.AttributeVector()
		}(i)
	}
	wg.Wait()

	first := seg.AttributeVector()
	for _, r := range results {
		require.Same(t, first, r)
	}

	after := seg.MemoryUsage(MemoryUsageFull)
	require.Equal(t, before+uint64(first.DataSize()), after)
}

// Property: dictionary sortedness (spec §8, property 1).
func TestDictionarySortedness(t *testing.T) {
	rows := []string{"banana", "apple", "cherry", "apple", "date"}
	seg := buildSegment(t, rows, make([]bool, len(rows)))

	var values []string
	d := seg.Dictionary()
	for ok := d.First(); ok; ok = d.Next() {
		values = append(values, d.Value())
	}
	for i := 1; i < len(values); i++ {
		require.True(t, values[i-1] < values[i])
	}
	require.Equal(t, []string{"apple", "banana", "cherry", "date"}, values)
}
