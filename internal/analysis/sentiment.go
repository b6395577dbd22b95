package analysis

import (
	"strings"

	"github.com/edgard/chatlens/internal/ingest"
)

// positiveKeywords is the fixed keyword set behind the placeholder
// sentiment heuristic.
var positiveKeywords = []string{
	"love", "great", "good", "nice", "happy", "awesome", "amazing",
	"wonderful", "best", "fun", "thanks", "thank", "haha", "lol",
	"cool", "perfect", "beautiful", "sweet", "yay", "glad",
}

// AnalyzeSentiment scores the conversation with a positive-keyword ratio
// scaled into [0.7, 0.9]. This is a placeholder heuristic by design, not
// sentiment modeling; the bounded scale keeps the score stable regardless
// of conversation size. Empty input yields a zero value.
func AnalyzeSentiment(messages []ingest.NormalizedMessage) Sentiment {
	if len(messages) == 0 {
		return Sentiment{}
	}

	positive := 0
	for _, m := range messages {
		lower := strings.ToLower(m.Message)
		for _, kw := range positiveKeywords {
			if strings.Contains(lower, kw) {
				positive++
				break
			}
		}
	}

	ratio := float64(positive) / float64(len(messages))
	return Sentiment{
		Score:         0.7 + 0.2*ratio,
		PositiveRatio: ratio,
	}
}
