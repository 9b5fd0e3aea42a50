package render

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// EmDash marks an absent numeric value.
const EmDash = "—"

var printer = message.NewPrinter(language.English)

// FormatValue renders an optional numeric field. Absent or NaN values render
// as an em-dash. Magnitudes >= 1000 get locale grouping with at most two
// fraction digits; smaller magnitudes get two to four fraction digits.
func FormatValue(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return EmDash
	}
	if math.Abs(*v) >= 1000 {
		return printer.Sprint(number.Decimal(*v, number.MaxFractionDigits(2)))
	}
	return printer.Sprint(number.Decimal(*v,
		number.MinFractionDigits(2), number.MaxFractionDigits(4)))
}

// FormatTime renders order timestamps; the zero time renders as an em-dash.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return EmDash
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s == "" {
		return EmDash
	}
	return s
}
