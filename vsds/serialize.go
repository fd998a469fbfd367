// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package vsds

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/phkeese/hyrise/civ"
)

// Encode serializes a Segment to the persisted layout named by the
// storage core's external-interfaces contract:
//
//	u32 N (rows), u32 U (unique values), u32 blob_len,
//	blob_len bytes of blob,
//	U x u32 offsets,
//	CIV header for A_off: u8 width, u32 length, then length*width bytes.
//
// All integers are little-endian. A_vid is derived, not serialized.
func Encode(s *Segment) []byte {
	n := s.Size()
	u := int(s.UniqueValuesCount())
	blobLen := len(s.blob)
	attrRaw := s.attrOff.RawBytes()

	size := 4 + 4 + 4 + blobLen + u*4 + 1 + 4 + len(attrRaw)
	buf := make([]byte, size)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], uint32(n))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(u))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(blobLen))
	off += 4
	off += copy(buf[off:], s.blob)
	for i := 0; i < u; i++ {
		binary.LittleEndian.PutUint32(buf[off:], s.offsets[i])
		off += 4
	}
	buf[off] = byte(s.attrOff.Width())
	off++
	binary.LittleEndian.PutUint32(buf[off:], uint32(s.attrOff.Len()))
	off += 4
	off += copy(buf[off:], attrRaw)
	return buf[:off]
}

// errTruncated is returned by Decode when the input buffer is shorter than
// the header it claims to encode.
var errTruncated = errors.New("hyrise: truncated serialized segment")

// Decode deserializes a Segment previously produced by Encode.
func Decode(data []byte) (*Segment, error) {
	if len(data) < 12 {
		return nil, errTruncated
	}
	off := 0
	n := binary.LittleEndian.Uint32(data[off:])
	off += 4
	u := binary.LittleEndian.Uint32(data[off:])
	off += 4
	blobLen := binary.LittleEndian.Uint32(data[off:])
	off += 4

	if uint64(off)+uint64(blobLen) > uint64(len(data)) {
		return nil, errTruncated
	}
	blob := make([]byte, blobLen)
	copy(blob, data[off:off+int(blobLen)])
	off += int(blobLen)

	if uint64(off)+uint64(u)*4 > uint64(len(data)) {
		return nil, errTruncated
	}
	offsets := make([]uint32, u)
	for i := uint32(0); i < u; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}

	if off+1+4 > len(data) {
		return nil, errTruncated
	}
	width := civ.Width(data[off])
	off++
	length := binary.LittleEndian.Uint32(data[off:])
	off += 4
	if length != n {
		return nil, errors.Newf("hyrise: serialized attribute vector length %d does not match row count %d", length, n)
	}

	dataLen := int(length) * int(width)
	if off+dataLen > len(data) {
		return nil, errTruncated
	}
	attrOff := civ.Decode(width, int(length), data[off:off+dataLen])

	return NewSegment(blob, offsets, attrOff, nil), nil
}
