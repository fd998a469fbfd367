// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package chunk

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/phkeese/hyrise/mvcc"
	"github.com/phkeese/hyrise/vsds"
)

// Visitor is called once per visible row encountered by ScanConcurrent. It
// may be called concurrently from multiple shards and must be safe for
// concurrent use, or otherwise synchronize its own access to shared state.
type Visitor func(row int, value vsds.Value) error

// ScanConcurrent partitions chunk's row range into shards contiguous ranges
// and scans each one in its own goroutine, calling visit for every row
// visible to snapshot/txID. It returns the first error encountered by any
// shard. As soon as one shard's visit or lookup returns an error, its
// context is cancelled (errgroup.WithContext) and every other shard stops
// at its next row boundary, so a scan that already found a fatal error does
// not keep visiting further rows.
//
// shards is clamped to [1, chunk.Rows()]; a shards value of 0 or less uses a
// single shard, degrading to a sequential scan.
func ScanConcurrent(ctx context.Context, c *Chunk, snapshot mvcc.CommitID, txID mvcc.TransactionID, shards int, visit Visitor) error {
	n := c.Rows()
	if n == 0 {
		return nil
	}
	if shards <= 0 {
		shards = 1
	}
	if shards > n {
		shards = n
	}

	g, gctx := errgroup.WithContext(ctx)
	chunkSize := (n + shards - 1) / shards
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error {
			return scanRange(gctx, c, snapshot, txID, start, end, visit)
		})
	}
	return g.Wait()
}

func scanRange(ctx context.Context, c *Chunk, snapshot mvcc.CommitID, txID mvcc.TransactionID, start, end int, visit Visitor) error {
	for row := start; row < end; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		visible, err := c.Metadata.Visible(row, snapshot, txID)
		if err != nil {
			return err
		}
		if !visible {
			continue
		}
		value, err := c.Column.OperatorAt(row)
		if err != nil {
			return err
		}
		if err := visit(row, value); err != nil {
			return err
		}
	}
	return nil
}
