package transaction

import (
	"context"
	"time"

	"github.com/mbd888/cardrisk/internal/risk"
)

// DefaultLookback bounds the history window used for frequency and
// device-novelty signals.
const DefaultLookback = 30 * 24 * time.Hour

// HistoryProvider retrieves the slice of an owner's prior transactions
// relevant to risk scoring. It reads committed records only; a read racing a
// concurrent creation may or may not observe it, which is acceptable for an
// advisory signal.
type HistoryProvider struct {
	store    Store
	lookback time.Duration
}

// NewHistoryProvider creates a provider over the given store.
// A non-positive lookback falls back to DefaultLookback.
func NewHistoryProvider(store Store, lookback time.Duration) *HistoryProvider {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &HistoryProvider{store: store, lookback: lookback}
}

// Window returns the owner's transactions whose occurredAt falls within the
// lookback before ref, most recent first. No history is not an error: the
// result is simply empty.
func (p *HistoryProvider) Window(ctx context.Context, ownerID string, ref time.Time) ([]*Transaction, error) {
	txns, err := p.store.ListSince(ctx, ownerID, ref.Add(-p.lookback))
	if err != nil {
		return nil, storeFailure("load history window", err)
	}
	return txns, nil
}

// entries projects a window onto the fields the risk engine inspects.
func entries(window []*Transaction) []risk.HistoryEntry {
	out := make([]risk.HistoryEntry, len(window))
	for i, t := range window {
		out[i] = risk.HistoryEntry{
			MerchantName:    t.MerchantName,
			OccurredAt:      t.OccurredAt,
			DeviceSignature: t.DeviceSignature,
		}
	}
	return out
}
