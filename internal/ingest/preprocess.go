package ingest

import (
	"strings"
)

// invisibleReplacer handles characters that need a substitution rather than
// removal: line/paragraph separators become newlines, the various Unicode
// spaces (including the narrow no-break space WhatsApp puts before AM/PM)
// become plain spaces, soft hyphens and the Mongolian vowel separator vanish.
var invisibleReplacer = strings.NewReplacer(
	"\u2028", "\n", "\u2029", "\n",
	"\u202F", " ", "\u205F", " ",
	"\u00A0", " ", "\u3000", " ",
	"\u00AD", "", "\u180E", "",
)

// Preprocess cleans a raw export string for line splitting: it strips a
// leading BOM, normalizes CRLF/CR line endings to LF, removes control,
// zero-width, and bidi characters, and collapses whitespace runs within
// each line. It always succeeds; malformed byte sequences pass through as
// opaque text.
func Preprocess(raw string) string {
	s := strings.TrimPrefix(raw, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = invisibleReplacer.Replace(s)
	s = strings.Map(dropInvisible, s)

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = collapseSpaces(lines[i])
	}
	return strings.Join(lines, "\n")
}

// dropInvisible removes control characters (keeping \n and mapping \t to a
// space), the C1 range, zero-width/bidi marks (U+200B-U+200F, U+202A-U+202E),
// and the invisible-operator block U+2060-U+206F.
func dropInvisible(r rune) rune {
	switch {
	case r == '\n':
		return r
	case r == '\t':
		return ' '
	case r < 0x20:
		return -1
	case r >= 0x7F && r <= 0x9F:
		return -1
	case r >= 0x200B && r <= 0x200F:
		return -1
	case r >= 0x202A && r <= 0x202E:
		return -1
	case r >= 0x2060 && r <= 0x206F:
		return -1
	case r == 0xFEFF:
		return -1
	default:
		return r
	}
}

// collapseSpaces reduces runs of spaces inside a single line to one space
// and trims the ends. Newlines never reach this function, so multi-line
// message boundaries are preserved by the caller.
func collapseSpaces(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	space := false
	for _, r := range line {
		if r == ' ' {
			if !space {
				b.WriteRune(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimSpace(b.String())
}

// SplitLines splits preprocessed text into physical lines, dropping
// empty ones.
func SplitLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
