package risk

import "fmt"

// Summary renders the one-line human summary for an assessment.
func Summary(a Assessment) string {
	switch a.Level {
	case LevelHigh:
		return fmt.Sprintf("This transaction has been flagged for high risk (score: %d). Multiple risk factors detected.", a.Score)
	case LevelMedium:
		return fmt.Sprintf("This transaction shows moderate risk indicators (score: %d). Additional verification may be required.", a.Score)
	default:
		return fmt.Sprintf("This transaction appears to be normal with low risk indicators (score: %d).", a.Score)
	}
}

// recommendationTable maps factor names to fixed action strings.
// A static table rather than a conditional cascade: total, and unmatched
// factor names simply contribute nothing.
var recommendationTable = map[string][]string{
	FactorHighAmount: {
		"Verify transaction with cardholder",
		"Request additional identification",
		"Consider splitting large transactions",
	},
	FactorElevatedAmount: {
		"Monitor for subsequent high-value transactions",
	},
	FactorHighRiskCat: {
		"Enable enhanced monitoring for this category",
		"Consider implementing category-specific limits",
	},
	FactorUnusualTime: {
		"Confirm transaction timing with cardholder",
		"Review recent account activity",
	},
	FactorFrequency: {
		"Review pattern of transactions with this merchant",
		"Consider temporary merchant-specific limits",
	},
	FactorNewDevice: {
		"Verify device with cardholder",
		"Enable additional authentication factors",
	},
}

// Recommendations maps triggered factors to deduplicated action strings,
// preserving first-seen order across factors.
func Recommendations(factors []Factor) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, f := range factors {
		for _, rec := range recommendationTable[f.Name] {
			if !seen[rec] {
				seen[rec] = true
				out = append(out, rec)
			}
		}
	}
	return out
}
