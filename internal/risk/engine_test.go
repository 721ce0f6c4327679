package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour int) time.Time {
	return time.Date(2025, 6, 10, hour, 0, 0, 0, time.UTC)
}

func TestAssess_HighRiskScenario(t *testing.T) {
	// Large amount, high-risk category, 02:00, no history at all.
	e := NewEngine()

	a := e.Assess(Candidate{
		Amount:          1500,
		Category:        "travel",
		MerchantName:    "Night Travel Co",
		OccurredAt:      at(2),
		DeviceSignature: "device-a",
	}, nil)

	require.Equal(t, []Factor{
		{Name: FactorHighAmount, Impact: ImpactHigh},
		{Name: FactorHighRiskCat, Impact: ImpactMedium},
		{Name: FactorUnusualTime, Impact: ImpactMedium},
		{Name: FactorNewDevice, Impact: ImpactMedium},
	}, a.Factors)
	assert.Equal(t, 80, a.Score)
	assert.Equal(t, LevelHigh, a.Level)
}

func TestAssess_FrequencyOnlyScenario(t *testing.T) {
	// Modest afternoon purchase, but the same merchant appears three times
	// in the trailing 24h and the device is known.
	e := NewEngine()
	occurred := at(14)

	history := []HistoryEntry{
		{MerchantName: "Corner Cafe", OccurredAt: occurred.Add(-2 * time.Hour), DeviceSignature: "device-a"},
		{MerchantName: "Corner Cafe", OccurredAt: occurred.Add(-5 * time.Hour), DeviceSignature: "device-a"},
		{MerchantName: "Corner Cafe", OccurredAt: occurred.Add(-20 * time.Hour), DeviceSignature: "device-a"},
	}

	a := e.Assess(Candidate{
		Amount:          200,
		Category:        "food",
		MerchantName:    "Corner Cafe",
		OccurredAt:      occurred,
		DeviceSignature: "device-a",
	}, history)

	require.Equal(t, []Factor{
		{Name: FactorFrequency, Impact: ImpactHigh},
	}, a.Factors)
	assert.Equal(t, 25, a.Score)
	assert.Equal(t, LevelLow, a.Level)
}

func TestAssess_Deterministic(t *testing.T) {
	e := NewEngine()
	c := Candidate{
		Amount:          750,
		Category:        "entertainment",
		MerchantName:    "Cinema",
		OccurredAt:      at(3),
		DeviceSignature: "device-z",
	}
	history := []HistoryEntry{
		{MerchantName: "Cinema", OccurredAt: at(1), DeviceSignature: "device-y"},
	}

	first := e.Assess(c, history)
	second := e.Assess(c, history)
	assert.Equal(t, first, second)
}

func TestAssess_EmptyHistoryFiresNewDevice(t *testing.T) {
	// A first-ever transaction always raises the device-novelty factor.
	// This is the documented cold-start behavior, not a bug.
	e := NewEngine()

	a := e.Assess(Candidate{
		Amount:       100,
		Category:     "retail",
		MerchantName: "Shop",
		OccurredAt:   at(12),
	}, []HistoryEntry{})

	require.Equal(t, []Factor{
		{Name: FactorNewDevice, Impact: ImpactMedium},
	}, a.Factors)
	assert.Equal(t, 15, a.Score)
}

func TestAmountRule_Boundaries(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		wantPoints int
		wantFactor string
	}{
		{name: "small amount", amount: 100, wantPoints: 0},
		{name: "exactly 500", amount: 500, wantPoints: 0},
		{name: "just above 500", amount: 500.01, wantPoints: 20, wantFactor: FactorElevatedAmount},
		{name: "exactly 1000", amount: 1000, wantPoints: 20, wantFactor: FactorElevatedAmount},
		{name: "just above 1000", amount: 1000.01, wantPoints: 30, wantFactor: FactorHighAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, factor := amountRule(Candidate{Amount: tt.amount}, nil)
			assert.Equal(t, tt.wantPoints, points)
			if tt.wantFactor == "" {
				assert.Nil(t, factor)
			} else {
				require.NotNil(t, factor)
				assert.Equal(t, tt.wantFactor, factor.Name)
			}
		})
	}
}

func TestCategoryRule_CaseInsensitive(t *testing.T) {
	points, factor := categoryRule(Candidate{Category: "Travel"}, nil)
	assert.Equal(t, pointsHighRiskCat, points)
	require.NotNil(t, factor)

	points, factor = categoryRule(Candidate{Category: "retail"}, nil)
	assert.Equal(t, 0, points)
	assert.Nil(t, factor)
}

func TestTimeOfDayRule_Boundaries(t *testing.T) {
	tests := []struct {
		hour  int
		fires bool
	}{
		{hour: 0, fires: true},
		{hour: 5, fires: true},
		{hour: 6, fires: false},
		{hour: 14, fires: false},
		{hour: 23, fires: false},
	}

	for _, tt := range tests {
		points, factor := timeOfDayRule(Candidate{OccurredAt: at(tt.hour)}, nil)
		if tt.fires {
			assert.Equal(t, pointsUnusualTime, points, "hour %d", tt.hour)
			assert.NotNil(t, factor, "hour %d", tt.hour)
		} else {
			assert.Equal(t, 0, points, "hour %d", tt.hour)
			assert.Nil(t, factor, "hour %d", tt.hour)
		}
	}
}

func TestFrequencyRule_AnchoredOnCandidateTime(t *testing.T) {
	// Entries older than 24h before the candidate's own timestamp don't
	// count, regardless of wall-clock now.
	occurred := at(12)
	history := []HistoryEntry{
		{MerchantName: "Shop", OccurredAt: occurred.Add(-1 * time.Hour)},
		{MerchantName: "Shop", OccurredAt: occurred.Add(-23 * time.Hour)},
		{MerchantName: "Shop", OccurredAt: occurred.Add(-25 * time.Hour)}, // outside window
		{MerchantName: "Other", OccurredAt: occurred.Add(-1 * time.Hour)}, // different merchant
	}

	points, factor := frequencyRule(Candidate{MerchantName: "Shop", OccurredAt: occurred}, history)
	assert.Equal(t, 0, points)
	assert.Nil(t, factor)

	history = append(history, HistoryEntry{MerchantName: "Shop", OccurredAt: occurred.Add(-2 * time.Hour)})
	points, factor = frequencyRule(Candidate{MerchantName: "Shop", OccurredAt: occurred}, history)
	assert.Equal(t, pointsFrequency, points)
	require.NotNil(t, factor)
	assert.Equal(t, FactorFrequency, factor.Name)
}

func TestDeviceRule_KnownDevice(t *testing.T) {
	history := []HistoryEntry{
		{MerchantName: "Shop", OccurredAt: at(1), DeviceSignature: "device-a"},
	}

	points, factor := deviceRule(Candidate{DeviceSignature: "device-a"}, history)
	assert.Equal(t, 0, points)
	assert.Nil(t, factor)

	points, factor = deviceRule(Candidate{DeviceSignature: "device-b"}, history)
	assert.Equal(t, pointsNewDevice, points)
	assert.NotNil(t, factor)
}

func TestLevelFor_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  Level
	}{
		{score: 0, want: LevelLow},
		{score: 29, want: LevelLow},
		{score: 30, want: LevelMedium},
		{score: 49, want: LevelMedium},
		{score: 50, want: LevelHigh},
		{score: 110, want: LevelHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score %d", tt.score)
	}
}
