package ingest

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseableDate reports that neither the direct layouts nor the
// component heuristics could produce a calendar-valid date.
var ErrUnparseableDate = errors.New("unparseable date")

// Normalizer resolves literal (datePart, timePart) pairs into absolute
// timestamps. DayFirst controls the tie-break when both numeric date
// components are <= 12; the documented default is day-first. Now supplies
// the fallback clock so tests can pin it.
type Normalizer struct {
	DayFirst bool
	Now      func() time.Time
}

// NewNormalizer returns a Normalizer with the day-first default and the
// wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{DayFirst: true, Now: time.Now}
}

// directLayouts are unambiguous "{datePart}, {timePart}" layouts tried
// before any component-level heuristics.
var directLayouts = []string{
	"2006-01-02, 15:04:05",
	"2006-01-02, 15:04",
	"2006-01-02, 3:04:05 PM",
	"2006-01-02, 3:04 PM",
	"2006/01/02, 15:04:05",
	"2006/01/02, 15:04",
}

var (
	ordinalRegex    = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)`)
	clockRegex      = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})(?:[:.](\d{2}))?$`)
	meridiemRegex   = regexp.MustCompile(`(?i)\s*([ap])\.?\s?m\.?\s*$`)
	namedMonthRegex = regexp.MustCompile(`(?i)^([a-z]+)\s+(\d{1,2})(?:,)?\s+(\d{2,4})$`)
	monthFirstNamed = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]+)(?:,)?\s+(\d{2,4})$`)
)

var monthsByName = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Resolve turns the literal parts into a timestamp. The bool reports whether
// the parts themselves yielded the value; when false the returned time is
// the current wall clock, keeping the pipeline total at the cost of a
// polluted timestamp (surfaced through Stats.ValidDateMessages, never as an
// error).
func (n *Normalizer) Resolve(datePart, timePart string) (time.Time, bool) {
	t, err := n.resolve(datePart, timePart)
	if err != nil {
		return n.Now(), false
	}
	return t, true
}

func (n *Normalizer) resolve(datePart, timePart string) (time.Time, error) {
	datePart = strings.TrimSpace(datePart)
	timePart = strings.TrimSpace(timePart)
	if datePart == "" {
		return time.Time{}, ErrUnparseableDate
	}

	combined := datePart + ", " + timePart
	for _, layout := range directLayouts {
		if t, err := time.Parse(layout, combined); err == nil {
			return t, nil
		}
	}

	year, month, day, err := n.resolveDate(datePart, timePart)
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, sec := 0, 0, 0
	if timePart != "" {
		hour, minute, sec, err = parseClock(timePart)
		if err != nil {
			return time.Time{}, err
		}
	}

	t := time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); round-trip the
	// components to reject impossible calendar dates.
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, ErrUnparseableDate
	}
	return t, nil
}

// resolveDate picks apart the date literal: named-month forms first, then
// numeric component-order resolution.
func (n *Normalizer) resolveDate(datePart, timePart string) (int, time.Month, int, error) {
	cleaned := ordinalRegex.ReplaceAllString(datePart, "$1")

	if m := namedMonthRegex.FindStringSubmatch(cleaned); m != nil {
		if month, ok := monthsByName[strings.ToLower(m[1])]; ok {
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			return n.expandYear(year), month, day, nil
		}
	}
	if m := monthFirstNamed.FindStringSubmatch(cleaned); m != nil {
		if month, ok := monthsByName[strings.ToLower(m[2])]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			return n.expandYear(year), month, day, nil
		}
	}

	return n.resolveNumericDate(cleaned, timePart)
}

// resolveNumericDate handles slash/dot/dash separated numeric dates. The
// component order heuristic: a component > 12 must be the day; when both
// are <= 12 the DayFirst policy decides. A dotted a.m./p.m. marker in the
// time part signals a locale that writes day-first, and overrides the
// policy.
func (n *Normalizer) resolveNumericDate(datePart, timePart string) (int, time.Month, int, error) {
	parts := splitDateComponents(datePart)
	if len(parts) != 3 {
		return 0, 0, 0, ErrUnparseableDate
	}

	nums := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, ErrUnparseableDate
		}
		nums[i] = v
	}

	// Year-first form (2025/03/13).
	if len(parts[0]) == 4 {
		return nums[0], time.Month(nums[1]), nums[2], nil
	}

	year := n.expandYear(nums[2])
	a, b := nums[0], nums[1]

	dayFirst := n.DayFirst
	if hasDottedMeridiem(timePart) {
		dayFirst = true
	}

	switch {
	case a > 12 && b <= 12:
		return year, time.Month(b), a, nil
	case b > 12 && a <= 12:
		return year, time.Month(a), b, nil
	case a > 12 && b > 12:
		return 0, 0, 0, ErrUnparseableDate
	case dayFirst:
		return year, time.Month(b), a, nil
	default:
		return year, time.Month(a), b, nil
	}
}

func splitDateComponents(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
}

// hasDottedMeridiem detects the "a.m."/"p.m." locale marker.
func hasDottedMeridiem(timePart string) bool {
	lower := strings.ToLower(timePart)
	return strings.Contains(lower, "a.m") || strings.Contains(lower, "p.m")
}

// expandYear widens 2-digit years with a pivot around the current year:
// the candidate 20xx value wraps to the previous century when it lands
// more than 50 years ahead.
func (n *Normalizer) expandYear(year int) int {
	if year >= 100 {
		return year
	}
	full := 2000 + year
	if full > n.Now().Year()+50 {
		full -= 100
	}
	return full
}

// parseClock parses 12- and 24-hour clock literals with optional seconds
// and an optional AM/PM suffix, including the dotted "a.m./p.m." variant.
func parseClock(timePart string) (int, int, int, error) {
	s := strings.TrimSpace(timePart)

	pm := false
	hasMeridiem := false
	if m := meridiemRegex.FindStringSubmatch(s); m != nil {
		hasMeridiem = true
		pm = strings.EqualFold(m[1], "p")
		s = strings.TrimSpace(s[:len(s)-len(m[0])])
	}

	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, ErrUnparseableDate
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}

	if hasMeridiem {
		if hour < 1 || hour > 12 {
			return 0, 0, 0, ErrUnparseableDate
		}
		if hour == 12 {
			hour = 0
		}
		if pm {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 || sec > 59 {
		return 0, 0, 0, ErrUnparseableDate
	}
	return hour, minute, sec, nil
}
