// Package risk implements rule-based risk scoring for card transactions.
//
// A candidate transaction is evaluated against five independent rules in a
// fixed order: amount magnitude, category, time of day, merchant frequency,
// and device novelty. Each triggered rule contributes points and a named
// factor. Scoring is a pure function of the candidate and the caller-supplied
// history window, so identical inputs always produce identical output.
package risk

import "time"

// Level buckets a score for human consumption.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Impact describes how strongly a single factor weighs on the score.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Factor names, shared with the recommendation table.
const (
	FactorHighAmount     = "High Transaction Amount"
	FactorElevatedAmount = "Elevated Transaction Amount"
	FactorHighRiskCat    = "High-Risk Category"
	FactorUnusualTime    = "Unusual Transaction Time"
	FactorFrequency      = "Unusual Transaction Frequency"
	FactorNewDevice      = "New Device Detected"
)

// Factor is a single named signal that contributed to a score.
type Factor struct {
	Name   string `json:"name"`
	Impact Impact `json:"impact"`
}

// Assessment is the result of scoring one candidate transaction.
// Factors preserve rule evaluation order.
type Assessment struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Factors []Factor `json:"factors"`
}

// Candidate carries the fields of a not-yet-persisted transaction that the
// rules inspect.
type Candidate struct {
	Amount          float64
	Category        string
	MerchantName    string
	OccurredAt      time.Time
	DeviceSignature string
}

// HistoryEntry is the slice of a prior transaction visible to the rules.
type HistoryEntry struct {
	MerchantName    string
	OccurredAt      time.Time
	DeviceSignature string
}
