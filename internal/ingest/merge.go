package ingest

import "regexp"

// quickStartRegexes are cheap prefix checks covering the common timestamp
// shapes (bracketed/parenthesized numeric dates, named months, ISO). They
// run before the full cascade so the merger stays fast on large exports.
var quickStartRegexes = []*regexp.Regexp{
	regexp.MustCompile(`^[\[(]?\d{1,4}[./-]\d{1,2}[./-]\d{1,4},? \d{1,2}[:.]\d{2}`),
	regexp.MustCompile(`^[\[(]?[A-Za-z]{3,9}\.? \d{1,2}(?:st|nd|rd|th)?,? \d{2,4}`),
	regexp.MustCompile(`^[\[(]?\d{1,2}(?:st|nd|rd|th)? [A-Za-z]{3,9}\.?,? \d{2,4}`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`),
}

// MergeLines recombines soft-wrapped physical lines into one logical line
// per message. A line starts a new logical message when it carries a
// timestamp prefix; anything else continues the previous message with a
// newline separator, preserving internal formatting. Lines arriving before
// any message has started are kept as best-effort standalone messages
// rather than discarded.
func MergeLines(lines []string) []string {
	var logical []string
	started := false

	for _, line := range lines {
		if startsNewLogicalLine(line) {
			logical = append(logical, line)
			started = true
			continue
		}
		if started {
			logical[len(logical)-1] += "\n" + line
			continue
		}
		logical = append(logical, line)
	}
	return logical
}

func startsNewLogicalLine(line string) bool {
	for _, re := range quickStartRegexes {
		if re.MatchString(line) {
			return true
		}
	}
	return StartsNewMessage(line)
}
