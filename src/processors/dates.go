package processors

import (
	"strings"
	"time"
)

// CandidateDateLayouts are tried in order for a whole column:
// DD/MM/YYYY, YYYY-MM-DD, DD-MM-YYYY, DD/MM/YY.
var CandidateDateLayouts = []string{"2/1/2006", "2006-1-2", "2-1-2006", "2/1/06"}

// fallbackDateLayouts back the generic day-first parse used when no candidate
// converts a single value. Each value picks its own layout here.
var fallbackDateLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006",
	"2.1.2006",
	"2.1.06",
	"2/1/06",
	"2006-1-2 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"2-Jan-2006",
	"2 Jan 2006",
	"20060102",
}

// DateColumnResult is the outcome of normalizing one column.
// Layout is empty when the generic fallback was used.
type DateColumnResult struct {
	Values   []*time.Time
	Layout   string
	Fallback bool
	Unparsed int
}

// NormalizeDateColumn picks the first candidate layout that parses at least
// one value and applies it to the entire column; values that do not match
// become nil. Mixed-format columns therefore lose the values written in the
// other format. When no candidate matches anything the generic day-first
// parser is applied per value.
func NormalizeDateColumn(values []string) DateColumnResult {
	for _, layout := range CandidateDateLayouts {
		parsed, ok := parseColumnWithLayout(values, layout)
		if ok > 0 {
			return DateColumnResult{Values: parsed, Layout: layout, Unparsed: countUnparsed(values, parsed)}
		}
	}

	parsed := make([]*time.Time, len(values))
	for i, v := range values {
		parsed[i] = parseDayFirst(v)
	}
	return DateColumnResult{Values: parsed, Fallback: true, Unparsed: countUnparsed(values, parsed)}
}

func parseColumnWithLayout(values []string, layout string) ([]*time.Time, int) {
	parsed := make([]*time.Time, len(values))
	ok := 0
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		day := dateOnly(t)
		parsed[i] = &day
		ok++
	}
	return parsed, ok
}

func parseDayFirst(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			day := dateOnly(t)
			return &day
		}
	}
	return nil
}

func countUnparsed(values []string, parsed []*time.Time) int {
	n := 0
	for i, v := range values {
		if parsed[i] == nil && strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// dateOnly drops the clock and zone; canonical dates are calendar days in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
