package transaction

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mbd888/cardrisk/internal/card"
	"github.com/mbd888/cardrisk/internal/risk"
)

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store backed by PostgreSQL. Only the last four
// card digits ever reach the database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed transaction store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the transactions table if it doesn't exist. The goose
// migrations under migrations/ are authoritative for deployed environments;
// this covers ad-hoc and development databases.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id               VARCHAR(40) PRIMARY KEY,
			owner_id         VARCHAR(64) NOT NULL,
			amount           NUMERIC(20,2) NOT NULL,
			card_last4       CHAR(4) NOT NULL,
			merchant_name    TEXT NOT NULL,
			category         VARCHAR(20) NOT NULL,
			occurred_at      TIMESTAMPTZ NOT NULL,
			origin_address   TEXT NOT NULL DEFAULT 'unknown',
			device_signature TEXT NOT NULL DEFAULT '',
			risk_score       INTEGER,
			risk_level       VARCHAR(10),
			risk_factors     JSONB,
			recommendations  JSONB,
			status           VARCHAR(20) NOT NULL DEFAULT 'pending',
			fraudulent       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_owner_occurred ON transactions(owner_id, occurred_at DESC);
		CREATE INDEX IF NOT EXISTS idx_transactions_card_last4 ON transactions(card_last4);
		CREATE INDEX IF NOT EXISTS idx_transactions_fraudulent ON transactions(fraudulent);
	`)
	return err
}

const txnColumns = `id, owner_id, amount, card_last4, merchant_name, category,
	occurred_at, origin_address, device_signature,
	risk_score, risk_level, risk_factors, recommendations,
	status, fraudulent, created_at, updated_at`

// Create inserts a new transaction record.
func (p *PostgresStore) Create(ctx context.Context, txn *Transaction) error {
	var score sql.NullInt64
	var level sql.NullString
	var factors []byte
	if txn.Assessment != nil {
		score = sql.NullInt64{Int64: int64(txn.Assessment.Score), Valid: true}
		level = sql.NullString{String: string(txn.Assessment.Level), Valid: true}
		b, err := json.Marshal(txn.Assessment.Factors)
		if err != nil {
			return fmt.Errorf("marshal factors: %w", err)
		}
		factors = b
	}

	var recommendations []byte
	if txn.Recommendations != nil {
		b, err := json.Marshal(txn.Recommendations)
		if err != nil {
			return fmt.Errorf("marshal recommendations: %w", err)
		}
		recommendations = b
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, owner_id, amount, card_last4, merchant_name, category,
			occurred_at, origin_address, device_signature,
			risk_score, risk_level, risk_factors, recommendations,
			status, fraudulent, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17)
	`,
		txn.ID, txn.OwnerID, txn.Amount, txn.Card.Last4(), txn.MerchantName, string(txn.Category),
		txn.OccurredAt, txn.OriginAddress, txn.DeviceSignature,
		score, level, nullBytes(factors), nullBytes(recommendations),
		string(txn.Status), txn.Fraudulent, txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves one transaction scoped to its owner. A record belonging
// to another owner is reported as not found.
func (p *PostgresStore) GetByID(ctx context.Context, ownerID, id string) (*Transaction, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+txnColumns+`
		FROM transactions WHERE id = $1 AND owner_id = $2
	`, id, ownerID)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return txn, nil
}

// ListByOwner returns the owner's transactions, most recent occurredAt first.
func (p *PostgresStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Transaction, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+txnColumns+`
		FROM transactions WHERE owner_id = $1
		ORDER BY occurred_at DESC LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTransactions(rows)
}

// ListSince returns the owner's transactions with occurredAt at or after
// since, most recent first.
func (p *PostgresStore) ListSince(ctx context.Context, ownerID string, since time.Time) ([]*Transaction, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+txnColumns+`
		FROM transactions WHERE owner_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC
	`, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("list transactions since: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTransactions(rows)
}

// UpdateStatus sets the status of an owner's transaction and returns the
// updated record. Last write wins on concurrent updates.
func (p *PostgresStore) UpdateStatus(ctx context.Context, ownerID, id string, status Status) (*Transaction, error) {
	row := p.db.QueryRowContext(ctx, `
		UPDATE transactions SET status = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+txnColumns+`
	`, id, ownerID, string(status))

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	return txn, nil
}

// scannable abstracts *sql.Row and *sql.Rows for shared scanning logic.
type scannable interface {
	Scan(dest ...interface{}) error
}

// scanTransaction scans a single row into a Transaction.
func scanTransaction(row scannable) (*Transaction, error) {
	var txn Transaction
	var last4, category, status string
	var score sql.NullInt64
	var level sql.NullString
	var factors, recommendations []byte

	err := row.Scan(
		&txn.ID, &txn.OwnerID, &txn.Amount, &last4, &txn.MerchantName, &category,
		&txn.OccurredAt, &txn.OriginAddress, &txn.DeviceSignature,
		&score, &level, &factors, &recommendations,
		&status, &txn.Fraudulent, &txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	number, err := card.FromLast4(last4)
	if err != nil {
		return nil, fmt.Errorf("stored card fragment: %w", err)
	}
	txn.Card = number
	txn.Category = Category(category)
	txn.Status = Status(status)

	if score.Valid {
		assessment := &risk.Assessment{
			Score:   int(score.Int64),
			Level:   risk.Level(level.String),
			Factors: []risk.Factor{},
		}
		if len(factors) > 0 {
			if err := json.Unmarshal(factors, &assessment.Factors); err != nil {
				return nil, fmt.Errorf("unmarshal factors: %w", err)
			}
		}
		txn.Assessment = assessment
	}

	if len(recommendations) > 0 {
		if err := json.Unmarshal(recommendations, &txn.Recommendations); err != nil {
			return nil, fmt.Errorf("unmarshal recommendations: %w", err)
		}
	}

	return &txn, nil
}

// scanTransactions scans multiple rows into a slice of Transaction.
func scanTransactions(rows *sql.Rows) ([]*Transaction, error) {
	var result []*Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, txn)
	}
	return result, rows.Err()
}

// nullBytes returns nil (SQL NULL) for empty JSON payloads. Non-empty
// payloads are passed as strings so the driver sends them as text, which
// Postgres casts to jsonb.
func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
