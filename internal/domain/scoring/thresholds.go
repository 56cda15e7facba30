package scoring

import (
	"math"

	"github.com/okian/climarisk/internal/domain/model"
)

// Bounds of a dimension score, inclusive.
const (
	MinDimensionScore = 1.0
	MaxDimensionScore = 5.0
)

// Severity floors. A score equal to a floor takes the higher label.
// Summary counts reuse criticalFloor and highFloor.
const (
	criticalFloor = 4.5
	highFloor     = 3.5
	moderateFloor = 2.5
	lowFloor      = 1.5
)

// Badge floors, tuned independently of the severity table.
const (
	badgeHighFloor   = 4.0
	badgeMediumFloor = 3.0
)

type severityThreshold struct {
	floor float64
	label model.Severity
}

type badgeThreshold struct {
	floor float64
	level model.BadgeLevel
}

// Ordered from the highest floor down.
var severityTable = []severityThreshold{
	{floor: criticalFloor, label: model.SeverityCritical},
	{floor: highFloor, label: model.SeverityHigh},
	{floor: moderateFloor, label: model.SeverityModerate},
	{floor: lowFloor, label: model.SeverityLow},
}

var badgeTable = []badgeThreshold{
	{floor: badgeHighFloor, level: model.BadgeHigh},
	{floor: badgeMediumFloor, level: model.BadgeMedium},
}

// Classify maps an overall score to its severity label.
func Classify(overall float64) model.Severity {
	for _, t := range severityTable {
		if overall >= t.floor {
			return t.label
		}
	}
	return model.SeverityMinimal
}

// Badge maps an overall score to the compact two-threshold badge.
func Badge(overall float64) model.BadgeLevel {
	for _, t := range badgeTable {
		if overall >= t.floor {
			return t.level
		}
	}
	return model.BadgeLow
}

// Round1 rounds to one decimal place for display. Values fed back into
// averages must stay unrounded.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func isHighSeverity(overall float64) bool { return overall >= highFloor }
func isCritical(overall float64) bool     { return overall >= criticalFloor }
