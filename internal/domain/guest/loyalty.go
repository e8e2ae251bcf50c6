package guest

import (
	"fmt"
	"time"
)

// LoyaltyLevel represents a guest loyalty tier.
type LoyaltyLevel string

const (
	LoyaltyBronze   LoyaltyLevel = "bronze"
	LoyaltySilver   LoyaltyLevel = "silver"
	LoyaltyGold     LoyaltyLevel = "gold"
	LoyaltyPlatinum LoyaltyLevel = "platinum"
)

// AllLoyaltyLevels returns the loyalty tiers in ascending order.
func AllLoyaltyLevels() []LoyaltyLevel {
	return []LoyaltyLevel{LoyaltyBronze, LoyaltySilver, LoyaltyGold, LoyaltyPlatinum}
}

// String returns the string representation of the level.
func (l LoyaltyLevel) String() string {
	return string(l)
}

// Tier returns the fixed tier order of the level (0-3), or -1 for an
// invalid level.
func (l LoyaltyLevel) Tier() int {
	switch l {
	case LoyaltyBronze:
		return 0
	case LoyaltySilver:
		return 1
	case LoyaltyGold:
		return 2
	case LoyaltyPlatinum:
		return 3
	default:
		return -1
	}
}

// IsValid returns true if the level is a known loyalty tier.
func (l LoyaltyLevel) IsValid() bool {
	return l.Tier() >= 0
}

// ParseLoyaltyLevel parses a string into a LoyaltyLevel.
func ParseLoyaltyLevel(s string) (LoyaltyLevel, error) {
	level := LoyaltyLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid loyalty level: %q", s)
	}
	return level, nil
}

// Loyalty score weights. The score is a weighted sum in [0,100]; each
// component saturates at its weight.
const (
	loyaltyValueWeight        = 40.0
	loyaltyFrequencyWeight    = 25.0
	loyaltySatisfactionWeight = 20.0
	loyaltyReferralWeight     = 10.0
	loyaltyTenureWeight       = 5.0

	loyaltyValueCeiling     = 10000.0 // lifetime value that maxes the value component
	loyaltyFrequencyCeiling = 10.0    // bookings that max the frequency component
	loyaltyReferralCeiling  = 5.0     // referrals that max the referral component
	loyaltyTenureCeiling    = 12.0    // months of tenure that max the tenure component
)

// Tier thresholds on the loyalty score.
const (
	platinumThreshold = 80.0
	goldThreshold     = 60.0
	silverThreshold   = 30.0
)

// LoyaltyScore computes the weighted loyalty score in [0,100] for the
// given metrics. It is a pure function: re-running it with unchanged
// inputs yields the same score.
func LoyaltyScore(m BusinessMetrics, now time.Time) float64 {
	value := capRatio(m.LifetimeValue, loyaltyValueCeiling) * loyaltyValueWeight
	frequency := capRatio(float64(m.TotalBookings), loyaltyFrequencyCeiling) * loyaltyFrequencyWeight
	satisfaction := (m.AverageRating / 5.0) * loyaltySatisfactionWeight
	referral := capRatio(float64(m.ReferralCount), loyaltyReferralCeiling) * loyaltyReferralWeight
	tenure := capRatio(monthsSince(m.FirstVisitDate, now), loyaltyTenureCeiling) * loyaltyTenureWeight

	return value + frequency + satisfaction + referral + tenure
}

// CalculateLevel derives the loyalty tier from the metrics. Score >=80 is
// platinum, >=60 gold, >=30 silver, anything below bronze.
func CalculateLevel(m BusinessMetrics, now time.Time) LoyaltyLevel {
	score := LoyaltyScore(m, now)
	switch {
	case score >= platinumThreshold:
		return LoyaltyPlatinum
	case score >= goldThreshold:
		return LoyaltyGold
	case score >= silverThreshold:
		return LoyaltySilver
	default:
		return LoyaltyBronze
	}
}

func capRatio(value, ceiling float64) float64 {
	if value <= 0 {
		return 0
	}
	ratio := value / ceiling
	if ratio > 1 {
		return 1
	}
	return ratio
}

// monthsSince returns the whole months elapsed since t, or 0 for the zero
// time (guest has never visited).
func monthsSince(t, now time.Time) float64 {
	if t.IsZero() || t.After(now) {
		return 0
	}
	months := float64(now.Sub(t)) / float64(30*24*time.Hour)
	return months
}

// RiskLevel classifies how likely a guest is to churn or escalate.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// IsValid returns true if the risk level is known.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	return string(r)
}

// classifyRisk derives the risk level from satisfaction and the negative
// impact accumulated in the current journey. A guest with a poor average
// rating, or a journey dominated by complaints, is at risk.
func classifyRisk(averageRating float64, journeyNegativeImpact int) RiskLevel {
	rated := averageRating > 0
	switch {
	case (rated && averageRating < 2.5) || journeyNegativeImpact <= -30:
		return RiskHigh
	case (rated && averageRating < 3.5) || journeyNegativeImpact <= -10:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ValueSegment buckets guests by spend per stay.
type ValueSegment string

const (
	SegmentBudget   ValueSegment = "budget"
	SegmentMidRange ValueSegment = "mid-range"
	SegmentLuxury   ValueSegment = "luxury"
)

// IsValid returns true if the value segment is known.
func (v ValueSegment) IsValid() bool {
	switch v {
	case SegmentBudget, SegmentMidRange, SegmentLuxury:
		return true
	default:
		return false
	}
}

// String returns the string representation of the segment.
func (v ValueSegment) String() string {
	return string(v)
}

// Spend-per-booking boundaries for value segmentation.
const (
	midRangeSpendFloor = 500.0
	luxurySpendFloor   = 2000.0
)

// classifySegment derives the value segment from average spend per booking.
// Guests with no bookings stay in the budget segment.
func classifySegment(lifetimeValue float64, totalBookings int) ValueSegment {
	if totalBookings <= 0 {
		return SegmentBudget
	}
	perBooking := lifetimeValue / float64(totalBookings)
	switch {
	case perBooking >= luxurySpendFloor:
		return SegmentLuxury
	case perBooking >= midRangeSpendFloor:
		return SegmentMidRange
	default:
		return SegmentBudget
	}
}
