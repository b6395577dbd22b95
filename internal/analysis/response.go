package analysis

import (
	"time"

	"github.com/edgard/chatlens/internal/ingest"
)

// Response computes the mean reply latency between different senders.
// A message counts as a reply when the sender changes and the gap to the
// previous message is under the cutoff; longer gaps are "not a reply" and
// excluded. Returns the mean and the number of replies it covers; zero
// replies yield a zero mean. The input must be chronologically sorted.
func Response(messages []ingest.NormalizedMessage, cutoff time.Duration) (time.Duration, int) {
	if cutoff <= 0 {
		cutoff = ResponseCutoff
	}

	var total time.Duration
	replies := 0
	for i := 1; i < len(messages); i++ {
		prev, cur := messages[i-1], messages[i]
		if !prev.HasDate() || !cur.HasDate() {
			continue
		}
		if prev.Sender == cur.Sender {
			continue
		}
		gap := cur.Date.Sub(prev.Date)
		if gap < 0 || gap >= cutoff {
			continue
		}
		total += gap
		replies++
	}

	if replies == 0 {
		return 0, 0
	}
	return total / time.Duration(replies), replies
}
