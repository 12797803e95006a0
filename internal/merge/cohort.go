package merge

import (
	"strings"
	"time"
)

// CohortStrategy derives a canonical cohort period code from a raw admission
// period value. An empty result means the value could not be interpreted; the
// cleaner drops such rows later.
type CohortStrategy interface {
	Name() string
	Derive(raw string) string
}

// dateLayouts covers the shapes the admissions export has used for literal
// admission dates, including the datetime rendering excelize produces for
// date-typed cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"02/01/2006",
	"01/02/2006",
	"1/2/06 15:04",
	"02-Jan-06",
}

// DateHalfYearStrategy maps a literal admission date to <year>10 for the first
// half of the year (month ≤ 6) and <year>20 for the second.
type DateHalfYearStrategy struct{}

func (DateHalfYearStrategy) Name() string { return "date_half_year" }

func (DateHalfYearStrategy) Derive(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		suffix := "20"
		if t.Month() <= time.June {
			suffix = "10"
		}
		return t.Format("2006") + suffix
	}
	return ""
}

// EncodedPeriodStrategy handles admission periods already encoded as a
// numeric YYYYNN value: the value is coerced to a string and its final digit
// forced to zero, so "20241" becomes "20240".
type EncodedPeriodStrategy struct{}

func (EncodedPeriodStrategy) Name() string { return "encoded_period" }

func (EncodedPeriodStrategy) Derive(raw string) string {
	s := strings.TrimSpace(raw)
	// Numeric cells round-trip through Excel as "20241.0".
	s = strings.TrimSuffix(s, ".0")
	if len(s) < 5 || len(s) > 6 {
		return ""
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s[:len(s)-1] + "0"
}

// ChainedStrategy tries each strategy in order and keeps the first non-empty
// derivation. The default pipeline chains date parsing before the encoded
// form because real exports mix both shapes in one column.
type ChainedStrategy struct {
	Strategies []CohortStrategy
}

func (c ChainedStrategy) Name() string {
	names := make([]string, len(c.Strategies))
	for i, s := range c.Strategies {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

func (c ChainedStrategy) Derive(raw string) string {
	for _, s := range c.Strategies {
		if cohort := s.Derive(raw); cohort != "" {
			return cohort
		}
	}
	return ""
}

// DefaultCohortStrategy is the strategy used by the consolidation run.
func DefaultCohortStrategy() CohortStrategy {
	return ChainedStrategy{Strategies: []CohortStrategy{
		DateHalfYearStrategy{},
		EncodedPeriodStrategy{},
	}}
}
