package stats

// Tier buckets a provider by delivery rate for display.
type Tier string

const (
	TierExcellent Tier = "Excellent"
	TierModerate  Tier = "Moderate"
	TierPoor      Tier = "Poor"
)

const (
	excellentThreshold = 80.0
	moderateThreshold  = 50.0
)

func (t Tier) String() string { return string(t) }

// ClassifyRate maps a delivery rate percentage to a tier. Each tier's lower
// bound is inclusive.
func ClassifyRate(rate float64) Tier {
	switch {
	case rate >= excellentThreshold:
		return TierExcellent
	case rate >= moderateThreshold:
		return TierModerate
	default:
		return TierPoor
	}
}
