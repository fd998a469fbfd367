// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package vsds implements the Variable-String Dictionary Segment: an
// immutable column of string values built from a concatenated character
// blob, an ordered offset table naming the distinct values in
// lexicographic order, and a per-row attribute vector (a civ.CIV) that
// names, for each row, either a blob offset or the null sentinel.
package vsds

import (
	"sort"
	"sync/atomic"

	"github.com/cockroachdb/swiss"

	"github.com/phkeese/hyrise/civ"
	"github.com/phkeese/hyrise/internal/base"
	"github.com/phkeese/hyrise/internal/invariants"
)

// InvalidValueID is the sentinel returned by LowerBound/UpperBound when no
// stored value satisfies the search predicate. It never appears as a
// stored value id.
const InvalidValueID uint32 = 1<<32 - 1

// Value is a single cell of a Segment: either a string or SQL NULL.
type Value struct {
	Str  string
	Null bool
}

// MemoryUsageMode selects how thoroughly Segment.MemoryUsage accounts for
// the blob. Sampled is an O(1) estimate that omits the blob (useful when a
// caller polls memory usage frequently and already knows the blob is
// large); Full additionally includes the blob's length.
type MemoryUsageMode uint8

const (
	// MemoryUsageSampled reports only the attribute vector and offset
	// table footprint.
	MemoryUsageSampled MemoryUsageMode = iota
	// MemoryUsageFull additionally accounts for the blob.
	MemoryUsageFull
)

// Segment is an immutable, dictionary-encoded column of string values. It
// is safe for concurrent reads from multiple goroutines without external
// synchronization; the only field mutated after construction is the
// lazily-materialized value-id attribute vector cache.
type Segment struct {
	blob    []byte
	offsets []uint32 // O[0..U), byte offsets into blob, lexicographically ordered
	attrOff *civ.CIV // A_off, length N
	logger  base.Logger

	vidCache atomic.Pointer[civ.CIV] // lazily materialized A_vid
}

// NewSegment constructs a Segment directly from its three constituent
// artifacts. This is the constructor used by the encoder (package-internal
// use) and by Decode (deserialization). Callers outside this package
// should use EncodeSegment. logger receives diagnostic output ahead of an
// invariant-violation panic in materializeValueIDs; a nil logger defaults
// to base.DefaultLogger{}, following the same nil-defaulting convention as
// mvcc.NewManager.
func NewSegment(blob []byte, offsets []uint32, attrOff *civ.CIV, logger base.Logger) *Segment {
	return &Segment{blob: blob, offsets: offsets, attrOff: attrOff, logger: base.WithComponent(logger, "vsds")}
}

// SetLogger replaces the segment's diagnostic logger. It is meant for
// callers that construct a Segment through EncodeSegment or Decode (which
// default to base.DefaultLogger{}) but want their own logger wired in
// afterward.
func (s *Segment) SetLogger(logger base.Logger) {
	s.logger = base.WithComponent(logger, "vsds")
}

// Size returns the number of rows in the segment.
func (s *Segment) Size() int { return s.attrOff.Len() }

// NullValueID returns U, the sentinel value id representing NULL.
func (s *Segment) NullValueID() uint32 { return uint32(len(s.offsets)) }

// UniqueValuesCount returns U, the number of distinct non-null values.
func (s *Segment) UniqueValuesCount() uint32 { return uint32(len(s.offsets)) }

// nullOffsetSentinel returns the offset-form null marker: the blob's
// length. No valid offset can equal the blob length since every stored
// offset is strictly less than it (§9 of the design: the largest valid
// offset is strictly less than blob_len, so the sentinel never collides
// with a real value even when the dictionary is empty).
func (s *Segment) nullOffsetSentinel() uint32 { return uint32(len(s.blob)) }

// stringAt decodes the NUL-terminated string beginning at the given blob
// offset.
func (s *Segment) stringAt(offset uint32) string {
	end := offset
	for end < uint32(len(s.blob)) && s.blob[end] != 0 {
		end++
	}
	return string(s.blob[offset:end])
}

// OperatorAt returns the value stored at row r, or an error if r is out of
// range.
func (s *Segment) OperatorAt(r int) (Value, error) {
	if r < 0 || r >= s.Size() {
		return Value{}, base.ErrRowOutOfRange
	}
	off := s.attrOff.Get(r)
	if off == s.nullOffsetSentinel() {
		return Value{Null: true}, nil
	}
	return Value{Str: s.stringAt(off)}, nil
}

// TypedValueOfValueID returns the string named by value id v. v must be <
// UniqueValuesCount(); TypedValueOfValueID never returns NULL.
func (s *Segment) TypedValueOfValueID(v uint32) (string, error) {
	if v >= s.UniqueValuesCount() {
		return "", base.ErrValueIDOutOfRange
	}
	return s.stringAt(s.offsets[v]), nil
}

// ValueOfValueID returns the value named by value id v, treating
// v == NullValueID() as NULL.
func (s *Segment) ValueOfValueID(v uint32) (Value, error) {
	if v == s.NullValueID() {
		return Value{Null: true}, nil
	}
	str, err := s.TypedValueOfValueID(v)
	if err != nil {
		return Value{}, err
	}
	return Value{Str: str}, nil
}

// LowerBound returns the smallest value id id such that the value it names
// is >= x in byte-wise order, or InvalidValueID if no stored value
// satisfies that. x must not represent NULL; callers must filter nulls
// before calling.
func (s *Segment) LowerBound(x string) uint32 {
	u := len(s.offsets)
	i := sort.Search(u, func(i int) bool { return s.stringAt(s.offsets[i]) >= x })
	if i == u {
		return InvalidValueID
	}
	return uint32(i)
}

// UpperBound returns the smallest value id id such that the value it names
// is > x in byte-wise order, or InvalidValueID if no stored value
// satisfies that.
func (s *Segment) UpperBound(x string) uint32 {
	u := len(s.offsets)
	i := sort.Search(u, func(i int) bool { return s.stringAt(s.offsets[i]) > x })
	if i == u {
		return InvalidValueID
	}
	return uint32(i)
}

// AttributeVectorOffsets returns A_off, the offset-form attribute vector
// produced by the encoder.
func (s *Segment) AttributeVectorOffsets() *civ.CIV { return s.attrOff }

// AttributeVector returns A_vid, the value-id-form attribute vector,
// materializing it on first call. Materialization is idempotent: if two
// goroutines race to materialize, both build a candidate but only the
// first to win a compare-and-swap on the cache slot is retained, and every
// subsequent (and losing) caller observes that same pointer, satisfying
// the "at most one stored CIV is observed externally" requirement.
func (s *Segment) AttributeVector() *civ.CIV {
	if p := s.vidCache.Load(); p != nil {
		return p
	}
	built := s.materializeValueIDs()
	s.vidCache.CompareAndSwap(nil, built)
	return s.vidCache.Load()
}

// materializeValueIDs implements the lazy-materialization algorithm from
// the column-storage specification: build a reverse map from blob offset
// to value id, then translate every A_off entry into its A_vid
// counterpart.
func (s *Segment) materializeValueIDs() *civ.CIV {
	u := len(s.offsets)
	var reverse swiss.Map[uint32, uint32]
	reverse.Init(u)
	for id, off := range s.offsets {
		reverse.Put(off, uint32(id))
	}

	n := s.Size()
	nullSentinel := s.nullOffsetSentinel()
	b := civ.NewBuilder()
	for r := 0; r < n; r++ {
		off := s.attrOff.Get(r)
		if off == nullSentinel {
			b.Set(r, uint32(u))
			continue
		}
		id, ok := reverse.Get(off)
		if !ok {
			s.logger.Infof(
				"row %d references blob offset %d which is not a key of the offset table's reverse map", r, off)
			panic(base.NewInvariantError(
				"vsds: row %d references blob offset %d which is not a key of the offset table's reverse map", r, off))
		}
		if invariants.Enabled && off != 0 && s.blob[off-1] != 0 {
			s.logger.Infof(
				"row %d references blob offset %d which does not immediately follow a NUL byte", r, off)
			panic(base.NewInvariantError(
				"vsds: row %d references blob offset %d which does not immediately follow a NUL byte", r, off))
		}
		b.Set(r, id)
	}
	return b.FinishWithMax(uint32(u))
}

// MemoryUsage returns the segment's memory footprint in bytes, computed
// according to mode.
func (s *Segment) MemoryUsage(mode MemoryUsageMode) uint64 {
	total := uint64(s.attrOff.DataSize())
	total += uint64(len(s.offsets)) * 4
	if mode == MemoryUsageFull {
		total += uint64(len(s.blob))
	}
	if vid := s.vidCache.Load(); vid != nil {
		total += uint64(vid.DataSize())
	}
	return total
}

// Dictionary returns an iterable view over the segment's distinct values
// in dictionary (lexicographic) order.
func (s *Segment) Dictionary() *Dictionary {
	return &Dictionary{seg: s, idx: -1}
}
