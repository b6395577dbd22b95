package ingest

import (
	"regexp"
	"strings"
)

// A parsePattern is one tier of the extraction cascade: a compiled regular
// expression plus the extraction rule mapping its capture groups onto a
// RawEntry. Patterns are tried in declaration order, most common export
// formats first.
type parsePattern struct {
	name     string
	re       *regexp.Regexp
	extract  func(m []string) RawEntry
	hasDate  bool
	isSystem bool
}

const (
	dateExpr = `\d{1,4}[./-]\d{1,2}[./-]\d{1,4}`
	timeExpr = `\d{1,2}[:.]\d{2}(?:[:.]\d{2})?(?:\s?[apAP]\.?\s?[mM]\.?)?`
	// Named-month date like "April 2nd 2025" or "2 April 2025".
	namedDateExpr = `(?:[A-Za-z]{3,9}\.? \d{1,2}(?:st|nd|rd|th)?,? \d{2,4}|\d{1,2}(?:st|nd|rd|th)? [A-Za-z]{3,9}\.?,? \d{2,4})`
)

func senderMessage(datePart, timePart, sender, message string) RawEntry {
	return RawEntry{
		DatePart: strings.TrimSpace(datePart),
		TimePart: strings.TrimSpace(timePart),
		Sender:   strings.TrimSpace(sender),
		Message:  message,
	}
}

// fourGroups is the extraction rule shared by every pattern that captures
// date, time, sender, message in that order.
func fourGroups(m []string) RawEntry {
	return senderMessage(m[1], m[2], m[3], m[4])
}

// patterns is the ordered cascade. The bracketed iOS WhatsApp form leads
// because it dominates real exports, followed by the Android dash form,
// parenthesized and unbracketed variants, named-month forms, ISO lines,
// and finally the loose date-less fallbacks.
var patterns = []parsePattern{
	{
		name:    "bracket_colon",
		re:      regexp.MustCompile(`(?s)^\[(` + dateExpr + `),? (` + timeExpr + `)\] ([^:]+?): ?(.*)$`),
		extract: fourGroups,
		hasDate: true,
	},
	{
		name:    "bracket_dash",
		re:      regexp.MustCompile(`(?s)^\[(` + dateExpr + `),? (` + timeExpr + `)\] ([^:-]+?) - ?(.*)$`),
		extract: fourGroups,
		hasDate: true,
	},
	{
		name:    "paren_colon",
		re:      regexp.MustCompile(`(?s)^\((` + dateExpr + `),? (` + timeExpr + `)\) ([^:]+?): ?(.*)$`),
		extract: fourGroups,
		hasDate: true,
	},
	{
		name:    "dash_colon",
		re:      regexp.MustCompile(`(?s)^(` + dateExpr + `),? (` + timeExpr + `) - ([^:]+?): ?(.*)$`),
		extract: fourGroups,
		hasDate: true,
	},
	{
		name:    "plain_colon",
		re:      regexp.MustCompile(`(?s)^(` + dateExpr + `),? (` + timeExpr + `) ([^:]+?): ?(.*)$`),
		extract: fourGroups,
		hasDate: true,
	},
	{
		name:    "named_month_colon",
		re:      regexp.MustCompile(`(?s)^(` + namedDateExpr + `),? (?:at )?(` + timeExpr + `) -? ?([^:]+?): ?(.*)$`),
		extract: fourGroups,
		hasDate: true,
	},
	{
		name:    "iso_colon",
		re:      regexp.MustCompile(`(?s)^(\d{4}-\d{2}-\d{2})[T ](\d{2}:\d{2}(?::\d{2})?) ?[-–]? ?([^:]+?): ?(.*)$`),
		extract: fourGroups,
		hasDate: true,
	},
	{
		name: "bracket_system",
		re:   regexp.MustCompile(`(?s)^\[(` + dateExpr + `),? (` + timeExpr + `)\] (.*)$`),
		extract: func(m []string) RawEntry {
			return senderMessage(m[1], m[2], "", m[3])
		},
		hasDate:  true,
		isSystem: true,
	},
	{
		name: "dash_system",
		re:   regexp.MustCompile(`(?s)^(` + dateExpr + `),? (` + timeExpr + `) - (.*)$`),
		extract: func(m []string) RawEntry {
			return senderMessage(m[1], m[2], "", m[3])
		},
		hasDate:  true,
		isSystem: true,
	},
	{
		name: "loose_colon",
		re:   regexp.MustCompile(`(?s)^([A-Za-z@+~][^:]{0,48}?): ?(.+)$`),
		extract: func(m []string) RawEntry {
			return senderMessage("", "", m[1], m[2])
		},
	},
	{
		name: "loose_dash",
		re:   regexp.MustCompile(`(?s)^([A-Za-z@+~][^-]{0,48}?) - (.+)$`),
		extract: func(m []string) RawEntry {
			return senderMessage("", "", m[1], m[2])
		},
	},
}

// datedPatterns are the cascade tiers carrying a timestamp prefix; the line
// merger uses them as "does this line start a new message" checks.
var datedPatterns = func() []parsePattern {
	out := make([]parsePattern, 0, len(patterns))
	for _, p := range patterns {
		if p.hasDate {
			out = append(out, p)
		}
	}
	return out
}()

// ExtractedEntry pairs a RawEntry with the cascade tier that produced it.
type ExtractedEntry struct {
	Entry  RawEntry
	System bool
}

// ExtractResult carries the extracted entries plus the counters for lines
// the cascade could not place.
type ExtractResult struct {
	Entries        []ExtractedEntry
	UnmatchedLines int
}

const sampleSize = 10

// Extract converts logical lines into RawEntry tuples by running the
// pattern cascade over each line. The first sampleSize lines vote on the
// most likely pattern, which is then tried first per line; remaining
// patterns fall through in fixed priority order, ending with a naive colon
// split. Output order matches input order and no line containing a colon
// is dropped.
func Extract(lines []string) ExtractResult {
	likely := sampleLikelyPattern(lines)

	var res ExtractResult
	for _, line := range lines {
		entry, ok := extractLine(line, likely)
		if !ok {
			res.UnmatchedLines++
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	return res
}

func extractLine(line string, likely int) (ExtractedEntry, bool) {
	if likely >= 0 {
		if m := patterns[likely].re.FindStringSubmatch(line); m != nil {
			return ExtractedEntry{Entry: patterns[likely].extract(m), System: patterns[likely].isSystem}, true
		}
	}
	for i, p := range patterns {
		if i == likely {
			continue
		}
		if m := p.re.FindStringSubmatch(line); m != nil {
			return ExtractedEntry{Entry: p.extract(m), System: p.isSystem}, true
		}
	}

	// Naive colon split: favor over-capture over data loss. Colon-free
	// lines are the only ones excluded.
	if idx := strings.Index(line, ":"); idx > 0 {
		return ExtractedEntry{Entry: senderMessage("", "", line[:idx], strings.TrimSpace(line[idx+1:]))}, true
	}
	return ExtractedEntry{}, false
}

// sampleLikelyPattern majority-votes the cascade over the first sampleSize
// lines so the dominant pattern of a large export is tried first per line.
// Returns -1 when nothing matches the sample.
func sampleLikelyPattern(lines []string) int {
	limit := len(lines)
	if limit > sampleSize {
		limit = sampleSize
	}

	votes := make([]int, len(patterns))
	for _, line := range lines[:limit] {
		for i, p := range patterns {
			if p.re.MatchString(line) {
				votes[i]++
				break
			}
		}
	}

	best, bestVotes := -1, 0
	for i, v := range votes {
		if v > bestVotes {
			best, bestVotes = i, v
		}
	}
	return best
}

// StartsNewMessage reports whether a line carries a timestamp prefix and
// therefore begins a new logical message rather than continuing the
// previous one.
func StartsNewMessage(line string) bool {
	for _, p := range datedPatterns {
		if p.re.MatchString(line) {
			return true
		}
	}
	return false
}
