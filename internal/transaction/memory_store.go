package transaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mbd888/cardrisk/internal/risk"
)

// MemoryStore is an in-memory transaction store for demo/development mode
// and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	txns    map[string]*Transaction // by ID
	byOwner map[string][]string     // ownerID → IDs in insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		txns:    make(map[string]*Transaction),
		byOwner: make(map[string][]string),
	}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Create(ctx context.Context, txn *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := cloneTxn(txn)
	m.txns[txn.ID] = cp
	m.byOwner[txn.OwnerID] = append(m.byOwner[txn.OwnerID], txn.ID)
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, ownerID, id string) (*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txn, ok := m.txns[id]
	if !ok || txn.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return cloneTxn(txn), nil
}

func (m *MemoryStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := m.ownedSortedLocked(ownerID)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) ListSince(ctx context.Context, ownerID string, since time.Time) ([]*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.ownedSortedLocked(ownerID)
	result := make([]*Transaction, 0, len(all))
	for _, txn := range all {
		if !txn.OccurredAt.Before(since) {
			result = append(result, txn)
		}
	}
	return result, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, ownerID, id string, status Status) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, ok := m.txns[id]
	if !ok || txn.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	txn.Status = status
	txn.UpdatedAt = time.Now()
	return cloneTxn(txn), nil
}

// ownedSortedLocked returns copies of the owner's transactions, most recent
// occurredAt first. Caller holds at least a read lock.
func (m *MemoryStore) ownedSortedLocked(ownerID string) []*Transaction {
	ids := m.byOwner[ownerID]
	result := make([]*Transaction, 0, len(ids))
	for _, id := range ids {
		result = append(result, cloneTxn(m.txns[id]))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OccurredAt.After(result[j].OccurredAt)
	})
	return result
}

// cloneTxn copies a transaction deeply enough that callers cannot mutate
// stored state through the returned pointer.
func cloneTxn(txn *Transaction) *Transaction {
	cp := *txn
	if txn.Assessment != nil {
		a := *txn.Assessment
		a.Factors = append([]risk.Factor(nil), txn.Assessment.Factors...)
		cp.Assessment = &a
	}
	cp.Recommendations = append([]string(nil), txn.Recommendations...)
	return &cp
}
