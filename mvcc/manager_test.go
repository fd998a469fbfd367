// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package mvcc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerAssignsMonotonicCommitIDs(t *testing.T) {
	m := NewManager(nil)
	require.Equal(t, UnsetCommitID, m.LastCommitID())

	chunk := NewChunkMetadata(0)

	tx1 := m.NewTransactionContext()
	row1, mark1 := chunk.MarkForInsert(tx1.ID())
	tx1.TrackInsert(chunk, row1, mark1)
	c1, err := tx1.Commit()
	require.NoError(t, err)

	tx2 := m.NewTransactionContext()
	row2, mark2 := chunk.MarkForInsert(tx2.ID())
	tx2.TrackInsert(chunk, row2, mark2)
	c2, err := tx2.Commit()
	require.NoError(t, err)

	require.Less(t, c1, c2)
	require.Equal(t, c2, m.LastCommitID())
}

func TestManagerSnapshotDoesNotSeeLaterCommits(t *testing.T) {
	m := NewManager(nil)
	chunk := NewChunkMetadata(0)

	txWriter := m.NewTransactionContext()
	row, mark := chunk.MarkForInsert(txWriter.ID())
	txWriter.TrackInsert(chunk, row, mark)

	txReader := m.NewTransactionContext() // snapshot taken before writer commits

	commitID, err := txWriter.Commit()
	require.NoError(t, err)
	require.Greater(t, commitID, UnsetCommitID)

	visible, err := chunk.Visible(row, txReader.SnapshotCommitID(), txReader.ID())
	require.NoError(t, err)
	require.False(t, visible, "reader snapshot predates the writer's commit")

	txLater := m.NewTransactionContext()
	visibleLater, err := chunk.Visible(row, txLater.SnapshotCommitID(), txLater.ID())
	require.NoError(t, err)
	require.True(t, visibleLater, "a snapshot taken after commit must see the row")
}

// TestManagerWriteWriteConflictAndRollback exercises the scenario where two
// concurrent transactions attempt to delete the same row: one succeeds, the
// other must observe a conflict and roll back, after which the winner
// commits its delete and the row is hidden from any subsequent snapshot.
func TestManagerWriteWriteConflictAndRollback(t *testing.T) {
	m := NewManager(nil)
	chunk := NewChunkMetadata(1)

	tx1 := m.NewTransactionContext()
	tx2 := m.NewTransactionContext()

	mark1, err := chunk.MarkForDelete(0, tx1.ID())
	require.NoError(t, err)
	tx1.TrackDelete(chunk, 0, mark1)

	_, err = chunk.MarkForDelete(0, tx2.ID())
	require.ErrorIs(t, err, ErrConflict)
	require.NoError(t, tx2.Rollback())

	commitID, err := tx1.Commit()
	require.NoError(t, err)

	txAfter := m.NewTransactionContext()
	visible, err := chunk.Visible(0, txAfter.SnapshotCommitID(), txAfter.ID())
	require.NoError(t, err)
	require.False(t, visible)
	require.GreaterOrEqual(t, txAfter.SnapshotCommitID(), commitID)
}

// TestManagerRollbackOfInsertUnwindsRow verifies that a transaction that
// inserts a row and then rolls back never publishes that row to any reader,
// including transactions that start after the rollback.
func TestManagerRollbackOfInsertUnwindsRow(t *testing.T) {
	m := NewManager(nil)
	chunk := NewChunkMetadata(0)

	tx := m.NewTransactionContext()
	row, mark := chunk.MarkForInsert(tx.ID())
	tx.TrackInsert(chunk, row, mark)
	require.NoError(t, tx.Rollback())

	txAfter := m.NewTransactionContext()
	visible, err := chunk.Visible(row, txAfter.SnapshotCommitID(), txAfter.ID())
	require.NoError(t, err)
	require.False(t, visible)
}

func TestManagerDoubleCommitOrRollbackErrors(t *testing.T) {
	m := NewManager(nil)
	tx := m.NewTransactionContext()
	_, err := tx.Commit()
	require.NoError(t, err)

	_, err = tx.Commit()
	require.ErrorIs(t, err, ErrTransactionFinished)

	err = tx.Rollback()
	require.ErrorIs(t, err, ErrTransactionFinished)
}

func TestManagerLowestActiveSnapshotCommitID(t *testing.T) {
	m := NewManager(nil)
	chunk := NewChunkMetadata(0)

	txOld := m.NewTransactionContext()
	row, mark := chunk.MarkForInsert(txOld.ID())
	txOld.TrackInsert(chunk, row, mark)
	_, err := txOld.Commit()
	require.NoError(t, err)

	txA := m.NewTransactionContext()
	txB := m.NewTransactionContext()

	require.Equal(t, txA.SnapshotCommitID(), m.LowestActiveSnapshotCommitID())

	require.NoError(t, txA.Rollback())
	require.Equal(t, txB.SnapshotCommitID(), m.LowestActiveSnapshotCommitID())

	require.NoError(t, txB.Rollback())
	require.Equal(t, m.LastCommitID(), m.LowestActiveSnapshotCommitID())
}

// TestManagerConcurrentCommitsPreserveOrder launches many transactions
// concurrently and checks that every committed commit id is unique and that
// LastCommitID lands on the highest one handed out, exercising the
// lock-free commit queue under contention.
func TestManagerConcurrentCommitsPreserveOrder(t *testing.T) {
	m := NewManager(nil)
	chunk := NewChunkMetadata(0)

	const n = 64
	ids := make([]CommitID, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			tx := m.NewTransactionContext()
			row, mark := chunk.MarkForInsert(tx.ID())
			tx.TrackInsert(chunk, row, mark)
			commitID, err := tx.Commit()
			require.NoError(t, err)
			ids[i] = commitID
		}(i)
	}
	wg.Wait()

	seen := make(map[CommitID]bool, n)
	var max CommitID
	for _, id := range ids {
		require.False(t, seen[id], "duplicate commit id %d", id)
		seen[id] = true
		if id > max {
			max = id
		}
	}
	require.Equal(t, max, m.LastCommitID())
	require.Len(t, seen, n)
}
