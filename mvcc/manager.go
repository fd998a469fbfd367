// Copyright 2024 The Hyrise-Go Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package mvcc

import (
	"container/heap"
	"sync"
	"sync/atomic"

	"github.com/phkeese/hyrise/internal/base"
	"github.com/phkeese/hyrise/internal/invariants"
)

// commitIDHeap is a min-heap multiset of the snapshot commit ids currently
// held by active transactions, used to compute the lowest commit id any
// active reader might still need to see. Adapted from the teacher's own use
// of container/heap for ordered small collections (e.g. its iterator merge
// heaps); an external ordered-map dependency would be overkill for this.
type commitIDHeap []CommitID

func (h commitIDHeap) Len() int            { return len(h) }
func (h commitIDHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h commitIDHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *commitIDHeap) Push(x interface{}) { *h = append(*h, x.(CommitID)) }
func (h *commitIDHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Manager is the process-wide transaction manager: it assigns monotonic
// transaction and commit ids, tracks the snapshot commit id of every active
// transaction, and enforces the strict commit-ordering pipeline described by
// the visibility gate. There is one Manager per database; it has no notion
// of individual chunks or tables, only of transactions and commit order.
type Manager struct {
	logger base.Logger

	nextTxID     atomic.Uint64
	nextCommitID atomic.Uint64
	lastCommitID atomic.Uint64

	queue *readyQueue[*commitContext]

	// commitMu serializes commit-id allocation with enqueueing onto queue,
	// so that queue order always matches commit-id order. publish also
	// holds it while draining, so lastCommitID advances one id at a time.
	commitMu sync.Mutex

	mu struct {
		sync.Mutex
		snapshots commitIDHeap
	}
}

// NewManager returns a Manager whose first assigned commit id will be 1
// (commit id 0 is reserved for pre-loaded data, see UnsetCommitID).
func NewManager(logger base.Logger) *Manager {
	m := &Manager{logger: base.WithComponent(logger, "mvcc")}
	m.queue = newReadyQueue(func(cc *commitContext) bool { return cc.ready.Load() })
	heap.Init(&m.mu.snapshots)
	return m
}

// LastCommitID returns the commit id of the most recently published commit,
// or UnsetCommitID if nothing has committed yet.
func (m *Manager) LastCommitID() CommitID {
	return CommitID(m.lastCommitID.Load())
}

// LowestActiveSnapshotCommitID returns the lowest snapshot commit id held by
// any currently active transaction, or the manager's LastCommitID if there
// are none. A garbage collector for old row versions must never remove a
// version still needed at or above this id.
func (m *Manager) LowestActiveSnapshotCommitID() CommitID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.mu.snapshots) == 0 {
		return m.LastCommitID()
	}
	return m.mu.snapshots[0]
}

func (m *Manager) trackSnapshot(id CommitID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	heap.Push(&m.mu.snapshots, id)
}

func (m *Manager) untrackSnapshot(id CommitID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.mu.snapshots {
		if v == id {
			heap.Remove(&m.mu.snapshots, i)
			if invariants.Enabled && invariants.Sometimes(1) {
				m.mu.snapshots.checkHeapInvariant()
			}
			return
		}
	}
}

// checkHeapInvariant verifies the min-heap property holds across the whole
// slice. It exists purely as an invariants.Sometimes-sampled sanity check;
// container/heap's own operations maintain the property, so a violation
// here means a bug in how the heap is being mutated, not a data problem.
func (h commitIDHeap) checkHeapInvariant() {
	for i := 1; i < len(h); i++ {
		parent := (i - 1) / 2
		invariants.CheckArg(h[parent] <= h[i], "mvcc: snapshot heap invariant violated at index %d", i)
	}
}

// NewTransactionContext begins a new transaction: it is assigned a fresh
// transaction id and takes a snapshot of the current commit order. Every
// row the transaction reads is filtered through that snapshot for the
// lifetime of the transaction.
func (m *Manager) NewTransactionContext() *TransactionContext {
	txID := TransactionID(m.nextTxID.Add(1))
	snapshot := m.LastCommitID()
	m.trackSnapshot(snapshot)
	return &TransactionContext{
		manager:  m,
		txID:     txID,
		snapshot: snapshot,
	}
}

// TransactionContext tracks one in-flight transaction: its id, the snapshot
// it reads through, and the row marks it must unwind on rollback or
// finalize on commit.
type TransactionContext struct {
	manager  *Manager
	txID     TransactionID
	snapshot CommitID

	mu        sync.Mutex
	finished  bool
	marks     []RowMark
	onCommits []func(CommitID)
}

// ID returns the transaction's id.
func (tc *TransactionContext) ID() TransactionID { return tc.txID }

// SnapshotCommitID returns the commit id this transaction reads through.
func (tc *TransactionContext) SnapshotCommitID() CommitID { return tc.snapshot }

// TrackInsert registers row as inserted by this transaction against chunk,
// via mark (as returned by ChunkMetadata.MarkForInsert). On commit, the
// chunk's CommitInsert is invoked with the transaction's assigned commit id;
// on rollback, mark.Unwind is invoked.
func (tc *TransactionContext) TrackInsert(chunk *ChunkMetadata, row int, mark RowMark) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.marks = append(tc.marks, mark)
	tc.onCommits = append(tc.onCommits, func(commitID CommitID) {
		_ = chunk.CommitInsert(row, commitID)
	})
}

// TrackDelete registers row as deleted by this transaction against chunk,
// via mark (as returned by ChunkMetadata.MarkForDelete). On commit, the
// chunk's CommitDelete is invoked with the transaction's assigned commit id;
// on rollback, mark.Unwind is invoked.
func (tc *TransactionContext) TrackDelete(chunk *ChunkMetadata, row int, mark RowMark) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.marks = append(tc.marks, mark)
	tc.onCommits = append(tc.onCommits, func(commitID CommitID) {
		_ = chunk.CommitDelete(row, commitID)
	})
}

// Rollback unwinds every row mark this transaction has accumulated and
// releases its snapshot. It is a no-op error to call Rollback twice, or to
// call it after Commit.
func (tc *TransactionContext) Rollback() error {
	tc.mu.Lock()
	if tc.finished {
		tc.mu.Unlock()
		return ErrTransactionFinished
	}
	tc.finished = true
	marks := tc.marks
	tc.mu.Unlock()

	for i := len(marks) - 1; i >= 0; i-- {
		marks[i].Unwind()
	}
	tc.manager.untrackSnapshot(tc.snapshot)
	return nil
}

// Commit enters the transaction into the commit-ordering pipeline: it is
// assigned the next commit id in strict FIFO order relative to every other
// transaction that entered the pipeline before it, its row marks are
// finalized with that commit id, and only then does the manager's
// LastCommitID advance to make the commit visible to future snapshots.
//
// This mirrors the teacher's WAL commit pipeline: a transaction's commit id
// is reserved up front (preserving global order), the transaction does its
// (here, essentially instantaneous) finalization work concurrently with
// others, and publication -- advancing the externally visible commit id --
// happens strictly in reservation order via the lock-free commit queue, so a
// transaction that reserved an earlier id can never be surpassed by one that
// reserved later.
func (tc *TransactionContext) Commit() (CommitID, error) {
	tc.mu.Lock()
	if tc.finished {
		tc.mu.Unlock()
		return UnsetCommitID, ErrTransactionFinished
	}
	tc.finished = true
	onCommits := tc.onCommits
	tc.mu.Unlock()

	cc := &commitContext{}
	cc.published.Add(1)

	// Allocation of the commit id and its enqueueing onto the commit queue
	// must be atomic with respect to other committers: otherwise a
	// transaction that allocates a later id could race ahead in the queue
	// of one that allocated an earlier id, breaking commit order.
	tc.manager.commitMu.Lock()
	commitID := CommitID(tc.manager.nextCommitID.Add(1))
	cc.id = commitID
	tc.manager.queue.push(cc)
	tc.manager.commitMu.Unlock()

	for _, fn := range onCommits {
		fn(commitID)
	}

	cc.ready.Store(true)
	cc.published.Done()
	tc.manager.publish()

	tc.manager.untrackSnapshot(tc.snapshot)
	return commitID, nil
}

// publish drains every ready commitContext at the head of the queue. Since
// commitIDs were reserved in enqueue order, draining the queue in order is
// exactly draining it in commit-id order: nothing is ever published out of
// sequence, even though the finalization work (the onCommit callbacks) that
// makes each commit ready may finish in any order.
func (m *Manager) publish() {
	// Popping a commit and storing its id must happen as one step with
	// respect to other publishers; otherwise a publisher holding an earlier
	// id could store it after another has already stored a later one.
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	for {
		cc, ok := m.queue.pop()
		if !ok {
			return
		}
		cc.published.Wait()
		// The commit queue drains strictly in allocation order (see the
		// comment on Commit), so each published commit id must be exactly
		// one greater than the last: no gaps, no repeats, no regressions.
		prev := CommitID(m.lastCommitID.Load())
		if invariants.Enabled && invariants.SafeSub(cc.id, prev) != 1 {
			m.logger.Infof("commit id %d published out of sequence after %d", cc.id, prev)
		}
		invariants.CheckArg(invariants.SafeSub(cc.id, prev) == 1,
			"mvcc: commit id %d published out of sequence after %d", cc.id, prev)
		m.lastCommitID.Store(uint64(cc.id))
	}
}
