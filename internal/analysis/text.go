package analysis

import (
	"sort"
	"strings"
	"unicode"

	"github.com/edgard/chatlens/internal/ingest"
)

// DefaultTopK bounds the word and emoji rankings.
const DefaultTopK = 10

const minWordLength = 3

// emojiAllowlist is the fixed set scanned by substring count. Frequency of
// anything outside it is not tracked.
var emojiAllowlist = []string{
	"😂", "🤣", "😊", "😍", "🥰", "😘",
	"❤️", "💕", "💖", "👍", "👎", "🙏",
	"👏", "🎉", "🔥", "💯", "😭", "😢",
	"😅", "😁", "😎", "🤔", "🙄", "😴",
	"🥺", "😡", "🤗", "😉", "✨", "😏",
}

// Text ranks word and emoji usage overall and for each sender. Words are
// lowercase whitespace/punctuation tokens longer than two characters;
// emojis come from the fixed allowlist. Empty input yields empty rankings.
func Text(messages []ingest.NormalizedMessage, topK int) TextAnalysis {
	if topK <= 0 {
		topK = DefaultTopK
	}

	words := make(map[string]int)
	emojis := make(map[string]int)
	perSenderWords := make(map[string]map[string]int)
	perSenderEmojis := make(map[string]map[string]int)

	for _, m := range messages {
		for _, w := range Tokenize(m.Message) {
			words[w]++
			bump(perSenderWords, m.Sender, w)
		}
		for _, e := range emojiAllowlist {
			if n := strings.Count(m.Message, e); n > 0 {
				emojis[e] += n
				bumpN(perSenderEmojis, m.Sender, e, n)
			}
		}
	}

	res := TextAnalysis{
		TopWords:  topFrequencies(words, topK),
		TopEmojis: topFrequencies(emojis, topK),
		PerSender: make(map[string]SenderText),
	}
	for sender, counts := range perSenderWords {
		st := res.PerSender[sender]
		st.TopWords = topFrequencies(counts, topK)
		res.PerSender[sender] = st
	}
	for sender, counts := range perSenderEmojis {
		st := res.PerSender[sender]
		st.TopEmojis = topFrequencies(counts, topK)
		res.PerSender[sender] = st
	}
	return res
}

// Tokenize lowercases the text and splits on anything that is not a letter
// or digit, keeping tokens longer than two characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	words := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minWordLength {
			words = append(words, f)
		}
	}
	return words
}

// WordCount counts the tokens in a message the same way Text does, so
// overview word totals and frequency rankings agree.
func WordCount(text string) int {
	return len(Tokenize(text))
}

func bump(m map[string]map[string]int, sender, token string) {
	bumpN(m, sender, token, 1)
}

func bumpN(m map[string]map[string]int, sender, token string, n int) {
	inner, ok := m[sender]
	if !ok {
		inner = make(map[string]int)
		m[sender] = inner
	}
	inner[token] += n
}

// topFrequencies ranks a counting map, breaking count ties alphabetically
// so output is deterministic.
func topFrequencies(counts map[string]int, k int) []Frequency {
	ranked := make([]Frequency, 0, len(counts))
	for token, count := range counts {
		ranked = append(ranked, Frequency{Token: token, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Token < ranked[j].Token
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
