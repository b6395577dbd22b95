// Package platform implements the per-platform adapters mapping native
// export schemas (WhatsApp free text; Instagram, Discord, Telegram and
// Snapchat structured JSON) onto the common ingest message shape.
package platform

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/chatlens/internal/ingest"
)

// Adapter converts one platform's native export into an un-postprocessed
// ProcessResult: messages in native order, shape warnings, and the parse
// counters. Sorting, deduplication, and stream-level warnings are the
// engine's job.
type Adapter interface {
	Platform() ingest.Platform
	Parse(input string) ingest.ProcessResult
}

// Options carries the knobs shared by all adapters. Now supplies the
// fallback clock (pinned in tests); Progress is the optional stage
// callback used by the WhatsApp text pipeline.
type Options struct {
	DayFirst bool
	Now      func() time.Time
	Progress ingest.ProgressFunc
	Logger   *slog.Logger
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// placeholder renders the textual stand-in for attachment-only content,
// e.g. "[Photo]" or "[Attachment x3]".
func placeholder(kind string, n int) string {
	if n > 1 {
		return fmt.Sprintf("[%s x%d]", kind, n)
	}
	return "[" + kind + "]"
}
