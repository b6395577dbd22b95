package ingest

import (
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// Default dedup policy: near-identical messages from the same sender
// within the window are export artifacts (edit/resend) and collapse onto
// the earliest occurrence.
const (
	DefaultDedupWindow         = 60 * time.Second
	DefaultSimilarityThreshold = 0.8
)

// SortMessages orders messages ascending by resolved date. Entries without
// a resolvable date sort after all dated entries; the sort is stable, so
// ties and undated runs keep their extraction order.
func SortMessages(messages []NormalizedMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		switch {
		case a.HasDate() && b.HasDate():
			return a.Date.Before(b.Date)
		case a.HasDate():
			return true
		default:
			return false
		}
	})
}

// Deduplicate removes near-duplicate messages: same sender, timestamps
// within the window, and text similarity at or above the threshold. The
// first occurrence always survives. The input must already be sorted.
func Deduplicate(messages []NormalizedMessage, window time.Duration, threshold float64) []NormalizedMessage {
	if len(messages) < 2 {
		return messages
	}

	kept := make([]NormalizedMessage, 0, len(messages))
	for _, msg := range messages {
		if isDuplicateOfKept(kept, msg, window, threshold) {
			continue
		}
		kept = append(kept, msg)
	}
	return kept
}

func isDuplicateOfKept(kept []NormalizedMessage, msg NormalizedMessage, window time.Duration, threshold float64) bool {
	if !msg.HasDate() {
		return false
	}
	// Sorted input: only the tail of kept can be inside the window.
	for i := len(kept) - 1; i >= 0; i-- {
		prev := kept[i]
		if !prev.HasDate() {
			continue
		}
		if msg.Date.Sub(prev.Date) > window {
			return false
		}
		if prev.Sender == msg.Sender && Similarity(prev.Message, msg.Message) >= threshold {
			return true
		}
	}
	return false
}

// Similarity returns a normalized Levenshtein-based similarity in [0, 1]:
// 1 means identical, 0 means nothing in common.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	al, bl := strings.ToLower(a), strings.ToLower(b)
	if al == bl {
		return 1
	}
	longest := max(len([]rune(al)), len([]rune(bl)))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(al, bl)
	return 1 - float64(dist)/float64(longest)
}
