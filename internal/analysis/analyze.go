package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/chatlens/internal/ingest"
)

// Analyze runs every analysis section over the message stream and returns
// the aggregate. Sections are independent pure functions, so they run
// concurrently. Text and time analysis and sentiment always populate. The
// overview is nil when fewer than two distinct senders are present, and the
// two-party error is returned alongside the partial data. Synthetic System
// placeholders never reach the sections.
func Analyze(ctx context.Context, messages []ingest.NormalizedMessage, topK int) (Data, error) {
	stream := withoutSystem(messages)

	var data Data
	var overviewErr error

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		data.Overview, overviewErr = ComputeOverview(stream)
		return nil
	})
	g.Go(func() error {
		data.Text = Text(stream, topK)
		return nil
	})
	g.Go(func() error {
		data.Time = Time(stream)
		return nil
	})
	g.Go(func() error {
		data.Feeling = AnalyzeSentiment(stream)
		return nil
	})
	_ = g.Wait()

	return data, overviewErr
}

func withoutSystem(messages []ingest.NormalizedMessage) []ingest.NormalizedMessage {
	out := make([]ingest.NormalizedMessage, 0, len(messages))
	for _, m := range messages {
		if m.Sender == ingest.SystemSender {
			continue
		}
		out = append(out, m)
	}
	return out
}
