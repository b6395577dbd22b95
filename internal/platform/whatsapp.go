package platform

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/edgard/chatlens/internal/ingest"
)

// mediaMarkers map the textual artifacts WhatsApp substitutes for media
// in a text export onto placeholder kinds.
var mediaMarkers = []struct {
	re   *regexp.Regexp
	kind string
}{
	{regexp.MustCompile(`(?i)^<media omitted>$`), "Media"},
	{regexp.MustCompile(`(?i)^image omitted$`), "Image"},
	{regexp.MustCompile(`(?i)^video omitted$`), "Video"},
	{regexp.MustCompile(`(?i)^audio omitted$`), "Audio"},
	{regexp.MustCompile(`(?i)^sticker omitted$`), "Sticker"},
	{regexp.MustCompile(`(?i)^gif omitted$`), "GIF"},
	{regexp.MustCompile(`(?i)^document omitted$`), "Document"},
	{regexp.MustCompile(`(?i)\(file attached\)\s*$`), "Document"},
	{regexp.MustCompile(`(?i)^<attached: .+>$`), "Attachment"},
}

// whatsappAdapter runs the free-text pipeline: preprocess, merge, extract,
// normalize. It is the only adapter that needs date-order resolution; the
// JSON platforms carry unambiguous timestamps.
type whatsappAdapter struct {
	norm     *ingest.Normalizer
	progress ingest.ProgressFunc
	log      *slog.Logger
}

// NewWhatsApp builds the WhatsApp text adapter.
func NewWhatsApp(opts Options) Adapter {
	return &whatsappAdapter{
		norm:     &ingest.Normalizer{DayFirst: opts.DayFirst, Now: opts.clock()},
		progress: opts.Progress,
		log:      opts.logger().With("adapter", "whatsapp"),
	}
}

func (a *whatsappAdapter) Platform() ingest.Platform {
	return ingest.PlatformWhatsApp
}

func (a *whatsappAdapter) Parse(input string) ingest.ProcessResult {
	cleaned := ingest.Preprocess(input)
	a.progress.Report(ingest.StagePreprocess, 1, 1)

	lines := ingest.SplitLines(cleaned)
	logical := ingest.MergeLines(lines)
	a.progress.Report(ingest.StageMerge, len(logical), len(lines))

	extracted := ingest.Extract(logical)
	a.progress.Report(ingest.StageExtract, len(extracted.Entries), len(logical))

	var res ingest.ProcessResult
	for i, ee := range extracted.Entries {
		if ee.System {
			res.Stats.FilteredSystemMessages++
			continue
		}

		entry := ee.Entry
		date, resolved := a.resolveDate(entry)
		text := entry.Message
		if kind, ok := mediaKind(text); ok {
			text = placeholder(kind, 1)
			res.Stats.FilteredMediaMessages++
		}

		res.Messages = append(res.Messages, ingest.NormalizedMessage{
			Timestamp: strings.TrimSpace(strings.TrimSuffix(entry.DatePart+", "+entry.TimePart, ", ")),
			Sender:    entry.Sender,
			Message:   text,
			Date:      date,
		})
		res.Stats.TotalMessages++
		if resolved {
			res.Stats.ValidDateMessages++
		}
		a.progress.Report(ingest.StageNormalize, i+1, len(extracted.Entries))
	}

	a.log.Debug("whatsapp parse finished",
		"lines", len(lines),
		"logical", len(logical),
		"messages", res.Stats.TotalMessages,
		"unmatched", extracted.UnmatchedLines,
		"valid_dates", res.Stats.ValidDateMessages)
	return res
}

// resolveDate normalizes the literal parts. Entries from the loose
// date-less tier get the current wall clock without counting as resolved;
// that absence is expected, not a warning.
func (a *whatsappAdapter) resolveDate(entry ingest.RawEntry) (time.Time, bool) {
	if entry.DatePart == "" {
		return a.norm.Now(), false
	}
	return a.norm.Resolve(entry.DatePart, entry.TimePart)
}

func mediaKind(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	for _, m := range mediaMarkers {
		if m.re.MatchString(trimmed) {
			return m.kind, true
		}
	}
	return "", false
}
