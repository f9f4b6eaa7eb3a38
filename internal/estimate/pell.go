// Package estimate produces range-based Pell grant estimates from the
// bracketed answers collected during intake. The numbers are deliberately
// coarse: bracket scores stand in for the real SAI formula, so the output
// is a planning range, never an award.
package estimate

import (
	"errors"
	"math"

	"github.com/fafsabuddy/server/internal/domain"
	"github.com/fafsabuddy/server/internal/schema"
)

// ErrIncompleteProfile indicates the profile is missing one of the answers
// the estimator needs.
var ErrIncompleteProfile = errors.New("need independent, household_size, income_range, asset_range to estimate")

// Disclaimer accompanies every estimate.
const Disclaimer = "Range estimate only (not official). Final Pell depends on FAFSA SAI + school calculation and enrollment intensity."

// Per-year Pell scheduled amounts. Both supported award years currently
// share the same maximum and minimum.
type yearConfig struct {
	maxPell float64
	minPell float64
}

var defaultYearConfig = yearConfig{maxPell: 7395, minPell: 740}

var yearConfigs = map[string]yearConfig{
	"2026-27": defaultYearConfig,
	"2025-26": defaultYearConfig,
}

// SAI band labels, highest need first.
const (
	BandVeryHighNeed = "very_high_need"
	BandHighNeed     = "high_need"
	BandModerateNeed = "moderate_need"
	BandLowNeed      = "low_need"
	BandVeryLowNeed  = "very_low_need"
)

// Estimate is a range-based Pell projection.
type Estimate struct {
	AwardYear      string `json:"award_year"`
	Enrollment     string `json:"enrollment"`
	SAIMin         int    `json:"sai_min"`
	SAIMax         int    `json:"sai_max"`
	SAIBandLabel   string `json:"sai_band_label"`
	PellLikelihood string `json:"pell_likelihood"`
	PellMin        int    `json:"pell_min"`
	PellMax        int    `json:"pell_max"`
	Disclaimer     string `json:"disclaimer"`
}

var incomeScores = map[string]int{
	"under_20k": 6,
	"20_40k":    5,
	"40_60k":    4,
	"60_80k":    3,
	"80_100k":   2,
	"100_150k":  1,
	"150_200k":  0,
	"over_200k": 0,
}

var assetPenalties = map[string]int{
	"under_1k":  0,
	"1_5k":      0,
	"5_20k":     1,
	"20_50k":    1,
	"50_100k":   2,
	"over_100k": 2,
}

var enrollmentFactors = map[string]float64{
	"full_time":      1.0,
	"three_quarter":  0.75,
	"half_time":      0.5,
	"less_than_half": 0.25,
}

// estimateSAIBand scores the bracketed answers into an SAI band. Lower SAI
// means higher need.
func estimateSAIBand(independent bool, householdSize int, incomeBand, assetBand string) (saiMin, saiMax int, label string) {
	needScore := incomeScores[incomeBand] - assetPenalties[assetBand]
	if householdSize >= 6 {
		needScore += 2
	} else if householdSize >= 4 {
		needScore++
	}
	if independent {
		needScore++
	}

	switch {
	case needScore >= 6:
		return -1500, 0, BandVeryHighNeed
	case needScore >= 4:
		return 1, 1500, BandHighNeed
	case needScore >= 2:
		return 1501, 3000, BandModerateNeed
	case needScore >= 1:
		return 3001, 4500, BandLowNeed
	default:
		return 4501, 999999, BandVeryLowNeed
	}
}

// saiBandToPellPercent maps an SAI band to a (min, max) fraction of the
// maximum Pell award.
func saiBandToPellPercent(saiMin, saiMax int) (pmin, pmax float64) {
	switch {
	case saiMin <= 0:
		return 0.80, 1.00
	case saiMax <= 1500:
		return 0.55, 0.80
	case saiMax <= 3000:
		return 0.35, 0.55
	case saiMax <= 4500:
		return 0.15, 0.35
	case saiMax <= 6000:
		return 0.10, 0.20
	default:
		return 0.00, 0.10
	}
}

func enrollmentFactor(enrollment string) float64 {
	if f, ok := enrollmentFactors[enrollment]; ok {
		return f
	}
	return 1.0
}

func roundToNearest10(x float64) int {
	return int(math.Round(x/10.0) * 10)
}

// PellRange computes the estimate from explicit inputs.
func PellRange(awardYear string, independent bool, householdSize int, incomeBand, assetBand, enrollment string) Estimate {
	saiMin, saiMax, saiLabel := estimateSAIBand(independent, householdSize, incomeBand, assetBand)
	pmin, pmax := saiBandToPellPercent(saiMin, saiMax)
	factor := enrollmentFactor(enrollment)
	cfg, ok := yearConfigs[awardYear]
	if !ok {
		cfg = defaultYearConfig
	}

	rawMin := cfg.maxPell * pmin * factor
	rawMax := cfg.maxPell * pmax * factor

	// Scaled minimum-Pell floor applies only when there is any eligibility.
	minFloor := cfg.minPell * factor
	if rawMax > 0 {
		rawMax = math.Max(rawMax, minFloor)
	}
	if rawMin > 0 {
		rawMin = math.Max(rawMin, minFloor)
	}

	ceiling := cfg.maxPell * factor
	rawMin = math.Max(0, math.Min(rawMin, ceiling))
	rawMax = math.Max(0, math.Min(rawMax, ceiling))

	likelihood := "Unlikely/Low"
	switch {
	case saiMin <= 0:
		likelihood = "Very likely"
	case saiMax <= 1500:
		likelihood = "Likely"
	case saiMax <= 3000:
		likelihood = "Possible"
	}

	return Estimate{
		AwardYear:      awardYear,
		Enrollment:     enrollment,
		SAIMin:         saiMin,
		SAIMax:         saiMax,
		SAIBandLabel:   saiLabel,
		PellLikelihood: likelihood,
		PellMin:        roundToNearest10(rawMin),
		PellMax:        roundToNearest10(rawMax),
		Disclaimer:     Disclaimer,
	}
}

// FromProfile computes the estimate from a collected profile. The four core
// answers are required; enrollment defaults to full time when unanswered.
func FromProfile(p domain.Profile) (Estimate, error) {
	independent, ok := p.Bool(schema.FieldIndependent)
	if !ok {
		return Estimate{}, ErrIncompleteProfile
	}
	householdSize, ok := p[schema.FieldHouseholdSize].(int)
	if !ok {
		// JSON round-trips store numbers as float64.
		f, isFloat := p[schema.FieldHouseholdSize].(float64)
		if !isFloat {
			return Estimate{}, ErrIncompleteProfile
		}
		householdSize = int(f)
	}
	incomeBand := p.String(schema.FieldIncomeRange)
	assetBand := p.String(schema.FieldAssetRange)
	if incomeBand == "" || assetBand == "" {
		return Estimate{}, ErrIncompleteProfile
	}

	enrollment := p.String(schema.FieldEnrollment)
	if enrollment == "" {
		enrollment = "full_time"
	}
	return PellRange(p.String(schema.FieldAwardYear), independent, householdSize, incomeBand, assetBand, enrollment), nil
}
