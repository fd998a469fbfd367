// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package mvcc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkMetadataPreloadedVisibleToEveryone(t *testing.T) {
	c := NewChunkMetadata(3)
	require.Equal(t, 3, c.Len())
	for r := 0; r < 3; r++ {
		visible, err := c.Visible(r, UnsetCommitID, InvalidTransactionID)
		require.NoError(t, err)
		require.True(t, visible)
	}
}

func TestChunkMetadataOutOfRange(t *testing.T) {
	c := NewChunkMetadata(1)
	_, err := c.Get(1)
	require.ErrorIs(t, err, ErrRowOutOfRange)
	_, err = c.Get(-1)
	require.ErrorIs(t, err, ErrRowOutOfRange)
}

func TestMarkForInsertVisibleOnlyToOwner(t *testing.T) {
	c := NewChunkMetadata(0)
	const txA TransactionID = 1
	const txB TransactionID = 2

	row, _ := c.MarkForInsert(txA)
	visibleToOwner, err := c.Visible(row, 100, txA)
	require.NoError(t, err)
	require.True(t, visibleToOwner)

	visibleToOther, err := c.Visible(row, 100, txB)
	require.NoError(t, err)
	require.False(t, visibleToOther)

	visibleToNoOne, err := c.Visible(row, 100, InvalidTransactionID)
	require.NoError(t, err)
	require.False(t, visibleToNoOne)
}

func TestMarkForInsertUnwindNeverVisible(t *testing.T) {
	c := NewChunkMetadata(0)
	const txA TransactionID = 1
	row, mark := c.MarkForInsert(txA)
	mark.Unwind()

	visible, err := c.Visible(row, MaxCommitID-1, txA)
	require.NoError(t, err)
	require.False(t, visible)
}

func TestCommitInsertMakesRowVisibleAtCommitID(t *testing.T) {
	c := NewChunkMetadata(0)
	const txA TransactionID = 1
	row, _ := c.MarkForInsert(txA)
	require.NoError(t, c.CommitInsert(row, 5))

	before, err := c.Visible(row, 4, InvalidTransactionID)
	require.NoError(t, err)
	require.False(t, before)

	at, err := c.Visible(row, 5, InvalidTransactionID)
	require.NoError(t, err)
	require.True(t, at)
}

func TestMarkForDeleteConflict(t *testing.T) {
	c := NewChunkMetadata(1)
	const txA TransactionID = 1
	const txB TransactionID = 2

	_, err := c.MarkForDelete(0, txA)
	require.NoError(t, err)

	_, err = c.MarkForDelete(0, txB)
	require.ErrorIs(t, err, ErrConflict)

	_, err = c.MarkForDelete(0, txA)
	require.ErrorIs(t, err, ErrConflict)
}

func TestMarkForDeleteHidesRowFromOwnerOnly(t *testing.T) {
	c := NewChunkMetadata(1)
	const txA TransactionID = 1
	const txB TransactionID = 2

	_, err := c.MarkForDelete(0, txA)
	require.NoError(t, err)

	visibleToOwner, err := c.Visible(0, UnsetCommitID, txA)
	require.NoError(t, err)
	require.False(t, visibleToOwner)

	visibleToOther, err := c.Visible(0, UnsetCommitID, txB)
	require.NoError(t, err)
	require.True(t, visibleToOther)
}

func TestMarkForDeleteUnwindRestoresPriorState(t *testing.T) {
	c := NewChunkMetadata(1)
	const txA TransactionID = 1
	mark, err := c.MarkForDelete(0, txA)
	require.NoError(t, err)
	mark.Unwind()

	row, err := c.Get(0)
	require.NoError(t, err)
	require.Equal(t, loadedRowMetadata(), row)
}

func TestCommitDeleteHidesRowAtCommitID(t *testing.T) {
	c := NewChunkMetadata(1)
	const txA TransactionID = 1
	_, err := c.MarkForDelete(0, txA)
	require.NoError(t, err)
	require.NoError(t, c.CommitDelete(0, 10))

	stillVisible, err := c.Visible(0, 9, InvalidTransactionID)
	require.NoError(t, err)
	require.True(t, stillVisible)

	nowHidden, err := c.Visible(0, 10, InvalidTransactionID)
	require.NoError(t, err)
	require.False(t, nowHidden)
}
