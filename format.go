package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// unitFormatter renders measurements for display in one language. Number
// grouping and decimal marks follow the language; unit suffixes do not change.
type unitFormatter struct {
	p *message.Printer
}

func newUnitFormatter(lang string) unitFormatter {
	return unitFormatter{p: message.NewPrinter(matchLanguage(lang))}
}

// formatWeight renders kilograms with one decimal, e.g. "72.5 kg".
func (f unitFormatter) formatWeight(kg float64) string {
	return f.p.Sprintf("%v kg", number.Decimal(kg, number.MaxFractionDigits(1), number.MinFractionDigits(1)))
}

// formatCalories renders whole kcal with grouping, e.g. "2,056 kcal".
func (f unitFormatter) formatCalories(kcal int) string {
	return f.p.Sprintf("%v kcal", number.Decimal(kcal))
}

// formatDuration renders minutes as "45m", "1h" or "1h 30m". Non-positive
// durations render as "0m".
func (f unitFormatter) formatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return f.p.Sprintf("%dm", m)
	case m == 0:
		return f.p.Sprintf("%dh", h)
	default:
		return f.p.Sprintf("%dh %dm", h, m)
	}
}

// formatDistance renders kilometres with up to two decimals, e.g. "5.25 km".
func (f unitFormatter) formatDistance(km float64) string {
	return f.p.Sprintf("%v km", number.Decimal(km, number.MaxFractionDigits(2)))
}

// formatPercentage renders a 0–100 value with no decimals, e.g. "85%".
func (f unitFormatter) formatPercentage(pct float64) string {
	return f.p.Sprintf("%v%%", number.Decimal(pct, number.MaxFractionDigits(0)))
}

// formatBMI renders a BMI with one decimal and its category, e.g. "25.8 (Overweight)".
func (f unitFormatter) formatBMI(bmi float64) string {
	return f.p.Sprintf("%v (%s)", number.Decimal(bmi, number.MaxFractionDigits(1), number.MinFractionDigits(1)), bmiCategory(bmi))
}

// supportedLanguages lists the display languages, default first.
var supportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.German,
	language.French,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// matchLanguage picks the closest supported language for a BCP 47 string or an
// Accept-Language header value. Unparseable input gets English.
func matchLanguage(raw string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := languageMatcher.Match(tags...)
	return supportedLanguages[idx]
}
