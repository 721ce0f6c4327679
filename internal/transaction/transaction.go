// Package transaction implements the card transaction lifecycle: validation,
// risk-assessed creation, owner-scoped reads, and status updates.
//
// Flow:
//  1. Caller submits a candidate transaction for an owner
//  2. The owner's recent history is loaded (30-day window)
//  3. The risk engine scores the candidate against the window
//  4. Score resolves the initial status; the record is persisted
//
// All reads and mutations are scoped to the owning principal. A record owned
// by someone else is indistinguishable from one that does not exist.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mbd888/cardrisk/internal/card"
	"github.com/mbd888/cardrisk/internal/risk"
)

var (
	// ErrNotFound covers both a missing record and a record owned by a
	// different principal.
	ErrNotFound = errors.New("transaction not found")

	// ErrStoreUnavailable wraps persistence failures. The service does not
	// retry; retry policy belongs to the caller.
	ErrStoreUnavailable = errors.New("transaction store unavailable")
)

// Status is the mutable lifecycle disposition of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFlagged   Status = "flagged"
	StatusDeclined  Status = "declined"
)

// ValidStatus reports whether s is one of the four lifecycle statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFlagged, StatusDeclined:
		return true
	}
	return false
}

// Score cut points for the initial status. Numerically aligned with the
// level thresholds in the risk package; the alignment is pinned by tests.
const (
	flaggedScoreThreshold = 50
	pendingScoreThreshold = 30
)

// StatusForScore resolves the initial lifecycle status from a risk score.
func StatusForScore(score int) Status {
	switch {
	case score >= flaggedScoreThreshold:
		return StatusFlagged
	case score >= pendingScoreThreshold:
		return StatusPending
	default:
		return StatusCompleted
	}
}

// Category is the merchant category of a transaction.
type Category string

const (
	CategoryRetail        Category = "retail"
	CategoryEntertainment Category = "entertainment"
	CategoryTravel        Category = "travel"
	CategoryFood          Category = "food"
	CategoryOther         Category = "other"
)

// ValidCategory reports whether c is in the fixed category set.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryRetail, CategoryEntertainment, CategoryTravel, CategoryFood, CategoryOther:
		return true
	}
	return false
}

// Transaction is a persisted card transaction with its creation-time risk
// assessment. Assessment and Recommendations are write-once; only Status
// changes after creation. Fraudulent is owned by an external adjudication
// process and is never set here.
type Transaction struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"ownerId"`
	Amount          float64          `json:"amount"`
	Card            card.Number      `json:"cardNumber"`
	MerchantName    string           `json:"merchantName"`
	Category        Category         `json:"category"`
	OccurredAt      time.Time        `json:"occurredAt"`
	OriginAddress   string           `json:"originAddress,omitempty"`
	DeviceSignature string           `json:"deviceSignature,omitempty"`
	Assessment      *risk.Assessment `json:"riskAssessment,omitempty"`
	Status          Status           `json:"status"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Fraudulent      bool             `json:"fraudulent"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

/// Store persists transactions. Every read and mutation is owner-scoped:
// implementations must treat a wrong-owner access as ErrNotFound.
type Store interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, ownerID, id string) (*Transaction, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Transaction, error)
	ListSince(ctx context.Context, ownerID string, since time.Time) ([]*Transaction, error)
	UpdateStatus(ctx context.Context, ownerID, id string, status Status) (*Transaction, error)
}

// ValidationError reports a single malformed input field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationErrors collects every field-level problem with a submission.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// storeFailure classifies a store error: ErrNotFound passes through,
// anything else is surfaced as ErrStoreUnavailable.
func storeFailure(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
