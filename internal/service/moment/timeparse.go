package moment

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// strategyFunc is one attempt at turning an expression into a timestamp.
type strategyFunc func(expr string, now time.Time) (time.Time, bool)

// TimeResolver converts a natural-language time expression into an absolute
// future timestamp. Strategies run in a fixed order: the general parser
// first, keyword heuristics second. A candidate no strategy can place in
// time is dropped by the caller; the source text is unreliable by
// construction, so that is a silent skip, not an error.
type TimeResolver struct {
	strategies []strategyFunc
}

func NewTimeResolver() *TimeResolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &TimeResolver{
		strategies: []strategyFunc{
			parserStrategy(w),
			keywordStrategy,
		},
	}
}

// Resolve tries expression, then fallbackText when expression is empty.
// A result strictly in the past is assumed to mean the next occurrence and
// is advanced by one day; an already-future result is returned unchanged.
func (r *TimeResolver) Resolve(expression, fallbackText string, now time.Time) (time.Time, bool) {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		expr = strings.TrimSpace(fallbackText)
	}
	if expr == "" {
		return time.Time{}, false
	}

	for _, strat := range r.strategies {
		if t, ok := strat(expr, now); ok {
			if t.Before(now) {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

func parserStrategy(w *when.Parser) strategyFunc {
	return func(expr string, now time.Time) (time.Time, bool) {
		result, err := w.Parse(expr, now)
		if err != nil || result == nil {
			return time.Time{}, false
		}
		return result.Time, true
	}
}

// hourPattern matches an explicit hour next to a marker: "9am", "3 pm",
// "9点", "21时".
var hourPattern = regexp.MustCompile(`(\d{1,2})\s*(am|pm|AM|PM|点|时)`)

// keywordStrategy covers the expressions the general parser misses, notably
// the Chinese relative-day words.
func keywordStrategy(expr string, now time.Time) (time.Time, bool) {
	var t time.Time
	switch {
	case strings.Contains(expr, "后天") || strings.Contains(strings.ToLower(expr), "day after tomorrow"):
		t = now.AddDate(0, 0, 2)
	case strings.Contains(expr, "明天") || strings.Contains(expr, "明早") || strings.Contains(strings.ToLower(expr), "tomorrow"):
		t = now.AddDate(0, 0, 1)
	default:
		return time.Time{}, false
	}

	if m := hourPattern.FindStringSubmatch(expr); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err == nil && hour < 24 {
			marker := strings.ToLower(m[2])
			if marker == "pm" && hour < 12 {
				hour += 12
			}
			t = time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
		}
	}

	return t, true
}
