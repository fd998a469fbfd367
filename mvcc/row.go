// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package mvcc

// RowMetadata is the per-row MVCC bookkeeping described by the
// column-storage specification: begin_cid, end_cid and tx_id.
type RowMetadata struct {
	BeginCID CommitID
	EndCID   CommitID
	TxID     TransactionID
}

// loadedRowMetadata is the metadata assigned to a row that is part of a
// chunk's initial, pre-loaded data: always visible until deleted.
func loadedRowMetadata() RowMetadata {
	return RowMetadata{BeginCID: UnsetCommitID, EndCID: MaxCommitID, TxID: InvalidTransactionID}
}

// insertedRowMetadata is the metadata assigned to a row freshly inserted
// by txID, before txID has committed.
func insertedRowMetadata(txID TransactionID) RowMetadata {
	return RowMetadata{BeginCID: PendingCommitID, EndCID: MaxCommitID, TxID: txID}
}

// Visible implements the visibility predicate: a reader with snapshot S
// and transaction id txID may see the row iff
//
//	(begin_cid <= S OR tx_id = txID) AND
//	(end_cid > S AND NOT (tx_id = txID AND end_cid != MAX))
//
// Concretely: a row committed at or before S is visible unless it was
// deleted at or before S; a row inserted by the reader itself (even
// uncommitted) is visible; a row the reader itself has marked for
// deletion is invisible to that reader even before the delete commits.
func (m RowMetadata) Visible(snapshot CommitID, txID TransactionID) bool {
	ownWrite := txID != InvalidTransactionID && m.TxID == txID
	beginOK := m.BeginCID <= snapshot || ownWrite
	endOK := m.EndCID > snapshot && !(ownWrite && m.EndCID != MaxCommitID)
	return beginOK && endOK
}
