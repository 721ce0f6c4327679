package risk

import (
	"strings"
	"time"
)

// Point contributions and thresholds for the rule table.
const (
	pointsHighAmount     = 30
	pointsElevatedAmount = 20
	pointsHighRiskCat    = 20
	pointsUnusualTime    = 15
	pointsFrequency      = 25
	pointsNewDevice      = 15

	highAmountThreshold     = 1000
	elevatedAmountThreshold = 500

	// A merchant seen this many times in the trailing 24h trips the
	// frequency rule.
	frequencyThreshold = 3
	frequencyWindow    = 24 * time.Hour

	// Score cut points for levels.
	highLevelThreshold   = 50
	mediumLevelThreshold = 30
)

// rule inspects a candidate against the history window and returns the
// points it contributes plus the factor it raises, or (0, nil).
type rule func(c Candidate, history []HistoryEntry) (int, *Factor)

// Engine scores candidate transactions against an ordered rule table.
type Engine struct {
	rules []rule
}

// NewEngine creates an engine with the standard rule table.
func NewEngine() *Engine {
	return &Engine{
		rules: []rule{
			amountRule,
			categoryRule,
			timeOfDayRule,
			frequencyRule,
			deviceRule,
		},
	}
}

// Assess folds the candidate through every rule in order and returns the
// additive score, its level, and the triggered factors in evaluation order.
// All rules run; there is no early exit and no clamping.
func (e *Engine) Assess(c Candidate, history []HistoryEntry) Assessment {
	a := Assessment{Factors: []Factor{}}
	for _, r := range e.rules {
		points, factor := r(c, history)
		a.Score += points
		if factor != nil {
			a.Factors = append(a.Factors, *factor)
		}
	}
	a.Level = LevelFor(a.Score)
	return a
}

// LevelFor maps a score to its level. Total over all integers.
func LevelFor(score int) Level {
	switch {
	case score >= highLevelThreshold:
		return LevelHigh
	case score >= mediumLevelThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

func amountRule(c Candidate, _ []HistoryEntry) (int, *Factor) {
	switch {
	case c.Amount > highAmountThreshold:
		return pointsHighAmount, &Factor{Name: FactorHighAmount, Impact: ImpactHigh}
	case c.Amount > elevatedAmountThreshold:
		return pointsElevatedAmount, &Factor{Name: FactorElevatedAmount, Impact: ImpactMedium}
	default:
		return 0, nil
	}
}

func categoryRule(c Candidate, _ []HistoryEntry) (int, *Factor) {
	switch strings.ToLower(c.Category) {
	case "entertainment", "travel":
		return pointsHighRiskCat, &Factor{Name: FactorHighRiskCat, Impact: ImpactMedium}
	default:
		return 0, nil
	}
}

func timeOfDayRule(c Candidate, _ []HistoryEntry) (int, *Factor) {
	hour := c.OccurredAt.Hour()
	if hour < 6 || hour > 23 {
		return pointsUnusualTime, &Factor{Name: FactorUnusualTime, Impact: ImpactMedium}
	}
	return 0, nil
}

// frequencyRule counts same-merchant history entries in the 24 hours
// trailing the candidate's own timestamp, not wall-clock now, so
// re-assessing an old candidate gives the same answer.
func frequencyRule(c Candidate, history []HistoryEntry) (int, *Factor) {
	cutoff := c.OccurredAt.Add(-frequencyWindow)
	count := 0
	for _, h := range history {
		if h.MerchantName == c.MerchantName && h.OccurredAt.After(cutoff) {
			count++
		}
	}
	if count >= frequencyThreshold {
		return pointsFrequency, &Factor{Name: FactorFrequency, Impact: ImpactHigh}
	}
	return 0, nil
}

// deviceRule fires when no history entry shares the candidate's device
// signature. With an empty window it always fires: a first-ever
// transaction is by definition from a device we have not seen.
func deviceRule(c Candidate, history []HistoryEntry) (int, *Factor) {
	for _, h := range history {
		if h.DeviceSignature == c.DeviceSignature {
			return 0, nil
		}
	}
	return pointsNewDevice, &Factor{Name: FactorNewDevice, Impact: ImpactMedium}
}
