// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package civ

// Decompressor is a stateful, sequential reader over a CIV. It also
// supports random access via Seek, since a CIV's element access is
// constant-time regardless of position.
type Decompressor struct {
	civ *CIV
	pos int
}

// Next returns the next value in the vector and advances the cursor. The
// second return value is false once the cursor has been advanced past the
// end of the vector.
func (d *Decompressor) Next() (uint32, bool) {
	if d.pos >= d.civ.length {
		return 0, false
	}
	v := d.civ.Get(d.pos)
	d.pos++
	return v, true
}

// Seek repositions the cursor to i so that the next call to Next returns
// the value at row i.
func (d *Decompressor) Seek(i int) {
	d.pos = i
}

// Pos returns the index that the next call to Next will return.
func (d *Decompressor) Pos() int {
	return d.pos
}

// Reset repositions the cursor to the beginning of the vector.
func (d *Decompressor) Reset() {
	d.pos = 0
}
