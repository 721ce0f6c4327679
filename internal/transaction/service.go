package transaction

import (
	"context"
	"time"

	"github.com/mbd888/cardrisk/internal/idgen"
	"github.com/mbd888/cardrisk/internal/logging"
	"github.com/mbd888/cardrisk/internal/risk"
	"github.com/mbd888/cardrisk/internal/traces"
)

// DefaultHistoryLimit caps history listings when the caller does not.
const DefaultHistoryLimit = 50

// unknownOrigin is recorded when the transport supplies no origin address.
const unknownOrigin = "unknown"

// AssessmentResult is what a collaborator gets back from a risk-assessed
// submission.
type AssessmentResult struct {
	TransactionID   string        `json:"transactionId"`
	Level           risk.Level    `json:"riskLevel"`
	Score           int           `json:"score"`
	Summary         string        `json:"summary"`
	Factors         []risk.Factor `json:"factors"`
	Recommendations []string      `json:"recommendations"`
	Status          Status        `json:"status"`
}

// Service is the transaction lifecycle manager. Each operation is an
// independent, request-scoped unit of work; the only shared state is the
// store itself.
type Service struct {
	store   Store
	engine  *risk.Engine
	history *HistoryProvider
	now     func() time.Time
}

// NewService creates a lifecycle service over the given store.
func NewService(store Store, engine *risk.Engine, history *HistoryProvider) *Service {
	return &Service{
		store:   store,
		engine:  engine,
		history: history,
		now:     time.Now,
	}
}

// SubmitForAssessment validates a candidate, scores it against the owner's
// history window, derives the initial status, and persists the record.
// The assessment and recommendations are computed in full before any
// persistence attempt, so a store failure never leaves a partial record.
func (s *Service) SubmitForAssessment(ctx context.Context, ownerID string, sub Submission) (*AssessmentResult, error) {
	ctx, span := traces.StartSpan(ctx, "transaction.submit", traces.OwnerID(ownerID))
	defer span.End()

	number, err := validate(sub)
	if err != nil {
		return nil, err
	}

	occurredAt := sub.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	window, err := s.history.Window(ctx, ownerID, s.now())
	if err != nil {
		return nil, err
	}

	assessment := s.engine.Assess(risk.Candidate{
		Amount:          sub.Amount,
		Category:        string(sub.Category),
		MerchantName:    sub.MerchantName,
		OccurredAt:      occurredAt,
		DeviceSignature: sub.DeviceSignature,
	}, entries(window))

	status := StatusForScore(assessment.Score)
	recommendations := risk.Recommendations(assessment.Factors)

	now := s.now()
	txn := &Transaction{
		ID:              idgen.WithPrefix("txn_"),
		OwnerID:         ownerID,
		Amount:          sub.Amount,
		Card:            number,
		MerchantName:    sub.MerchantName,
		Category:        sub.Category,
		OccurredAt:      occurredAt,
		OriginAddress:   originOrUnknown(sub.OriginAddress),
		DeviceSignature: sub.DeviceSignature,
		Assessment:      &assessment,
		Status:          status,
		Recommendations: recommendations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	done := observeOp("create")
	err = s.store.Create(ctx, txn)
	done()
	if err != nil {
		return nil, storeFailure("create transaction", err)
	}

	AssessmentsTotal.WithLabelValues(string(assessment.Level)).Inc()
	TransactionsTotal.WithLabelValues(string(status)).Inc()
	span.SetAttributes(traces.TransactionID(txn.ID), traces.RiskScore(assessment.Score))

	logging.L(ctx).Info("transaction assessed",
		"transaction_id", txn.ID,
		"owner_id", ownerID,
		"score", assessment.Score,
		"level", assessment.Level,
		"status", status,
		"factors", len(assessment.Factors),
	)

	return &AssessmentResult{
		TransactionID:   txn.ID,
		Level:           assessment.Level,
		Score:           assessment.Score,
		Summary:         risk.Summary(assessment),
		Factors:         assessment.Factors,
		Recommendations: recommendations,
		Status:          status,
	}, nil
}

// CreatePlain records a pre-vetted transaction without running the risk
// engine. Status is fixed to completed and no assessment is stored.
func (s *Service) CreatePlain(ctx context.Context, ownerID string, sub Submission) (*Transaction, error) {
	ctx, span := traces.StartSpan(ctx, "transaction.create_plain", traces.OwnerID(ownerID))
	defer span.End()

	number, err := validate(sub)
	if err != nil {
		return nil, err
	}

	occurredAt := sub.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	now := s.now()
	txn := &Transaction{
		ID:              idgen.WithPrefix("txn_"),
		OwnerID:         ownerID,
		Amount:          sub.Amount,
		Card:            number,
		MerchantName:    sub.MerchantName,
		Category:        sub.Category,
		OccurredAt:      occurredAt,
		OriginAddress:   originOrUnknown(sub.OriginAddress),
		DeviceSignature: sub.DeviceSignature,
		Status:          StatusCompleted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	done := observeOp("create")
	err = s.store.Create(ctx, txn)
	done()
	if err != nil {
		return nil, storeFailure("create transaction", err)
	}

	TransactionsTotal.WithLabelValues(string(StatusCompleted)).Inc()
	span.SetAttributes(traces.TransactionID(txn.ID))

	logging.L(ctx).Info("transaction recorded",
		"transaction_id", txn.ID,
		"owner_id", ownerID,
		"status", txn.Status,
	)

	return txn, nil
}

// ListHistory returns the owner's transactions, newest first.
// A non-positive limit falls back to DefaultHistoryLimit.
func (s *Service) ListHistory(ctx context.Context, ownerID string, limit int) ([]*Transaction, error) {
	ctx, span := traces.StartSpan(ctx, "transaction.list_history", traces.OwnerID(ownerID))
	defer span.End()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	done := observeOp("list")
	txns, err := s.store.ListByOwner(ctx, ownerID, limit)
	done()
	if err != nil {
		return nil, storeFailure("list transactions", err)
	}
	return txns, nil
}

// GetByID fetches a single transaction for its owner. A record owned by a
// different principal behaves exactly like a missing one.
func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*Transaction, error) {
	ctx, span := traces.StartSpan(ctx, "transaction.get", traces.OwnerID(ownerID), traces.TransactionID(id))
	defer span.End()

	done := observeOp("get")
	txn, err := s.store.GetByID(ctx, ownerID, id)
	done()
	if err != nil {
		return nil, storeFailure("get transaction", err)
	}
	return txn, nil
}

// UpdateStatus sets a transaction's status to any of the four lifecycle
// values. No transition graph is enforced: adjudication workflow lives
// outside this core, so the owner may move between statuses freely.
func (s *Service) UpdateStatus(ctx context.Context, ownerID, id string, status Status) (*Transaction, error) {
	ctx, span := traces.StartSpan(ctx, "transaction.update_status", traces.OwnerID(ownerID), traces.TransactionID(id))
	defer span.End()

	if !ValidStatus(status) {
		return nil, ValidationErrors{{Field: "status", Reason: "must be one of pending, completed, flagged, declined"}}
	}

	done := observeOp("update_status")
	txn, err := s.store.UpdateStatus(ctx, ownerID, id, status)
	done()
	if err != nil {
		return nil, storeFailure("update transaction status", err)
	}

	TransactionsTotal.WithLabelValues(string(status)).Inc()

	logging.L(ctx).Info("transaction status updated",
		"transaction_id", id,
		"owner_id", ownerID,
		"status", status,
	)

	return txn, nil
}

func originOrUnknown(origin string) string {
	if origin == "" {
		return unknownOrigin
	}
	return origin
}
