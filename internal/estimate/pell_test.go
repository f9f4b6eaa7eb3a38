package estimate

import (
	"errors"
	"testing"

	"github.com/fafsabuddy/server/internal/domain"
	"github.com/fafsabuddy/server/internal/schema"
)

func TestPellRangeVeryHighNeed(t *testing.T) {
	t.Parallel()

	// income 5 + independent 1 = need 6.
	est := PellRange("2026-27", true, 2, "20_40k", "1_5k", "full_time")

	if est.SAIBandLabel != BandVeryHighNeed {
		t.Fatalf("band = %s, want %s", est.SAIBandLabel, BandVeryHighNeed)
	}
	if est.SAIMin != -1500 || est.SAIMax != 0 {
		t.Fatalf("SAI band = (%d, %d), want (-1500, 0)", est.SAIMin, est.SAIMax)
	}
	if est.PellLikelihood != "Very likely" {
		t.Fatalf("likelihood = %q, want Very likely", est.PellLikelihood)
	}
	// 80%-100% of 7395, rounded to nearest 10.
	if est.PellMin != 5920 || est.PellMax != 7400 {
		t.Fatalf("pell range = (%d, %d), want (5920, 7400)", est.PellMin, est.PellMax)
	}
}

func TestPellRangeVeryLowNeed(t *testing.T) {
	t.Parallel()

	// income 0 - asset penalty 2 = need -2.
	est := PellRange("2026-27", false, 2, "over_200k", "over_100k", "full_time")

	if est.SAIBandLabel != BandVeryLowNeed {
		t.Fatalf("band = %s, want %s", est.SAIBandLabel, BandVeryLowNeed)
	}
	if est.PellLikelihood != "Unlikely/Low" {
		t.Fatalf("likelihood = %q, want Unlikely/Low", est.PellLikelihood)
	}
	// 0%-10%, with the minimum-Pell floor lifting the top of the range.
	if est.PellMin != 0 || est.PellMax != 740 {
		t.Fatalf("pell range = (%d, %d), want (0, 740)", est.PellMin, est.PellMax)
	}
}

func TestPellRangeEnrollmentScaling(t *testing.T) {
	t.Parallel()

	full := PellRange("2026-27", true, 2, "20_40k", "1_5k", "full_time")
	half := PellRange("2026-27", true, 2, "20_40k", "1_5k", "half_time")
	threeQuarter := PellRange("2026-27", true, 2, "20_40k", "1_5k", "three_quarter")

	if half.PellMin != 2960 || half.PellMax != 3700 {
		t.Fatalf("half-time range = (%d, %d), want (2960, 3700)", half.PellMin, half.PellMax)
	}
	if !(half.PellMax < threeQuarter.PellMax && threeQuarter.PellMax < full.PellMax) {
		t.Fatalf("enrollment factors out of order: half=%d three_quarter=%d full=%d",
			half.PellMax, threeQuarter.PellMax, full.PellMax)
	}
}

func TestPellRangeHouseholdScore(t *testing.T) {
	t.Parallel()

	small := PellRange("2026-27", false, 2, "60_80k", "under_1k", "full_time")
	medium := PellRange("2026-27", false, 4, "60_80k", "under_1k", "full_time")
	large := PellRange("2026-27", false, 6, "60_80k", "under_1k", "full_time")

	// income 3: need 3 / 4 / 5 -> moderate, high, high.
	if small.SAIBandLabel != BandModerateNeed {
		t.Fatalf("household 2 band = %s, want %s", small.SAIBandLabel, BandModerateNeed)
	}
	if medium.SAIBandLabel != BandHighNeed {
		t.Fatalf("household 4 band = %s, want %s", medium.SAIBandLabel, BandHighNeed)
	}
	if large.SAIBandLabel != BandHighNeed {
		t.Fatalf("household 6 band = %s, want %s", large.SAIBandLabel, BandHighNeed)
	}
}

func TestPellRangeUnknownYearFallsBack(t *testing.T) {
	t.Parallel()

	known := PellRange("2026-27", true, 2, "20_40k", "1_5k", "full_time")
	unknown := PellRange("2031-32", true, 2, "20_40k", "1_5k", "full_time")
	if known.PellMax != unknown.PellMax {
		t.Fatalf("unknown award year should use the default schedule: %d vs %d", known.PellMax, unknown.PellMax)
	}
}

func TestFromProfile(t *testing.T) {
	t.Parallel()

	p := domain.Profile{
		schema.FieldAwardYear:     "2026-27",
		schema.FieldIndependent:   true,
		schema.FieldHouseholdSize: float64(2), // JSON round-trip shape
		schema.FieldIncomeRange:   "20_40k",
		schema.FieldAssetRange:    "1_5k",
	}
	est, err := FromProfile(p)
	if err != nil {
		t.Fatalf("FromProfile failed: %v", err)
	}
	if est.Enrollment != "full_time" {
		t.Fatalf("enrollment should default to full_time, got %s", est.Enrollment)
	}
	if est.PellMin != 5920 {
		t.Fatalf("PellMin = %d, want 5920", est.PellMin)
	}
	if est.Disclaimer == "" {
		t.Fatal("estimate must carry the disclaimer")
	}
}

func TestFromProfileIncomplete(t *testing.T) {
	t.Parallel()

	p := domain.Profile{schema.FieldIncomeRange: "20_40k"}
	if _, err := FromProfile(p); !errors.Is(err, ErrIncompleteProfile) {
		t.Fatalf("expected ErrIncompleteProfile, got %v", err)
	}
}
