package view

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evmarket/analytics-console/internal/model"
)

// Tone is the color family a badge is drawn with.
type Tone string

const (
	ToneYellow Tone = "yellow"
	ToneBlue   Tone = "blue"
	ToneGreen  Tone = "green"
	ToneRed    Tone = "red"
	ToneGray   Tone = "gray"
)

// Badge is a colored label.
type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

var statusTones = map[model.Status]Tone{
	model.StatusPending:    ToneYellow,
	model.StatusProcessing: ToneBlue,
	model.StatusCompleted:  ToneGreen,
	model.StatusFailed:     ToneRed,
}

// StatusBadge styles a processing status. Unknown values are gray.
func StatusBadge(s model.Status) Badge {
	tone, ok := statusTones[s]
	if !ok {
		tone = ToneGray
	}
	return Badge{Label: string(s), Tone: tone}
}

// SeverityBadge styles an insight severity. Anything that is neither HIGH
// nor MEDIUM is green.
func SeverityBadge(s model.Severity) Badge {
	switch s {
	case model.SeverityHigh:
		return Badge{Label: string(s), Tone: ToneRed}
	case model.SeverityMedium:
		return Badge{Label: string(s), Tone: ToneYellow}
	default:
		return Badge{Label: string(s), Tone: ToneGreen}
	}
}

// ConfidenceBand buckets a confidence score. Each band includes its lower
// bound: 0.8 is High, 0.6 is Medium.
func ConfidenceBand(c float64) Badge {
	switch {
	case c >= 0.8:
		return Badge{Label: "High", Tone: ToneGreen}
	case c >= 0.6:
		return Badge{Label: "Medium", Tone: ToneYellow}
	default:
		return Badge{Label: "Low", Tone: ToneRed}
	}
}

// ConfidencePercent renders a score as a percentage with one decimal,
// e.g. 0.8765 -> "87.7%".
func ConfidencePercent(c float64) string {
	return decimal.NewFromFloat(c).Shift(2).StringFixed(1) + "%"
}

// Humanize turns an enum constant into a label: BATTERY_HEALTH -> BATTERY HEALTH.
func Humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// FormatDate renders a timestamp the way the lists show it, e.g.
// "May 1, 2024, 10:30 AM". A zero timestamp renders as "-".
func FormatDate(ts model.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format("Jan 2, 2006, 03:04 PM")
}

// FormatOptionalDate is FormatDate for optional timestamps.
func FormatOptionalDate(ts *model.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return FormatDate(*ts)
}
