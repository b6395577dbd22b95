package analysis

import (
	"errors"

	"github.com/edgard/chatlens/internal/ingest"
)

// ErrTwoPartyRequired reports that the overview cannot be computed: the
// per-sender breakdown is defined strictly for two-party conversations.
var ErrTwoPartyRequired = errors.New("overview requires at least two distinct senders")

// ComputeOverview summarizes the conversation: totals, a per-sender
// breakdown of the first two distinct senders encountered, average
// messages per day over the dated span, the most active weekday, and the
// mean response time under the one-hour cutoff. Messages from senders
// beyond the first two still count toward the totals. Fewer than two
// distinct senders is a hard error; the feature is undefined without two
// parties.
func ComputeOverview(messages []ingest.NormalizedMessage) (*Overview, error) {
	var o Overview
	principal := make(map[string]int, 2)

	for _, m := range messages {
		words := WordCount(m.Message)
		o.TotalMessages++
		o.TotalWords += words

		idx, ok := principal[m.Sender]
		if !ok && len(principal) < 2 {
			idx = len(principal)
			principal[m.Sender] = idx
			o.Senders[idx].Name = m.Sender
			ok = true
		}
		if ok {
			o.Senders[idx].Messages++
			o.Senders[idx].Words += words
		}
	}

	if len(principal) < 2 {
		return nil, ErrTwoPartyRequired
	}

	o.AvgMessagesPerDay = avgPerDay(messages)
	o.MostActiveWeekday = Time(messages).MostActiveDay

	mean, _ := Response(messages, ResponseCutoff)
	o.AvgResponseSeconds = mean.Seconds()

	return &o, nil
}

// avgPerDay divides total messages by the inclusive day span of the dated
// messages. The input is sorted, so the span is last minus first.
func avgPerDay(messages []ingest.NormalizedMessage) float64 {
	var first, last int = -1, -1
	for i, m := range messages {
		if !m.HasDate() {
			continue
		}
		if first == -1 {
			first = i
		}
		last = i
	}
	if first == -1 {
		return 0
	}

	days := int(messages[last].Date.Sub(messages[first].Date).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return float64(len(messages)) / float64(days)
}
