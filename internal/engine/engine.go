// Package engine is the single entry point of the ingestion core: it
// dispatches raw export input to the matching platform adapter, runs the
// postprocessing pass (chronological sort, fuzzy dedup), and attaches
// stream-level warnings. Process is total: any input, including binary
// garbage, yields a ProcessResult and never an error.
package engine

import (
	"log/slog"
	"time"

	"github.com/edgard/chatlens/internal/ingest"
	"github.com/edgard/chatlens/internal/platform"
)

// autoOrder is the fixed priority the auto hint probes adapters in. The
// JSON shapes are cheap to reject, so they go first; the WhatsApp text
// pipeline accepts almost anything and stays last.
var autoOrder = []ingest.Platform{
	ingest.PlatformTelegram,
	ingest.PlatformInstagram,
	ingest.PlatformDiscord,
	ingest.PlatformSnapchat,
	ingest.PlatformWhatsApp,
}

// Options carries the ingestion policy knobs.
type Options struct {
	// DayFirst resolves the numeric date order tie-break when both
	// components are <= 12.
	DayFirst bool
	// DedupWindow and SimilarityThreshold define the near-duplicate
	// collapse rule.
	DedupWindow         time.Duration
	SimilarityThreshold float64
	// Now supplies the fallback clock; nil means time.Now.
	Now func() time.Time
	// Progress, when set, receives per-stage checkpoints.
	Progress ingest.ProgressFunc
}

// DefaultOptions returns the documented policy defaults: day-first dates,
// 60-second window, 0.8 similarity.
func DefaultOptions() Options {
	return Options{
		DayFirst:            true,
		DedupWindow:         ingest.DefaultDedupWindow,
		SimilarityThreshold: ingest.DefaultSimilarityThreshold,
	}
}

// Engine processes chat exports. It holds no per-request state: concurrent
// Process calls on independent inputs need no coordination.
type Engine struct {
	log      *slog.Logger
	opts     Options
	now      func() time.Time
	adapters map[ingest.Platform]platform.Adapter
}

// New builds an Engine with all platform adapters registered.
func New(logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = ingest.DefaultDedupWindow
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = ingest.DefaultSimilarityThreshold
	}

	aopts := platform.Options{
		DayFirst: opts.DayFirst,
		Now:      opts.Now,
		Progress: opts.Progress,
		Logger:   logger,
	}
	adapters := make(map[ingest.Platform]platform.Adapter)
	for _, a := range []platform.Adapter{
		platform.NewWhatsApp(aopts),
		platform.NewInstagram(aopts),
		platform.NewDiscord(aopts),
		platform.NewTelegram(aopts),
		platform.NewSnapchat(aopts),
	} {
		adapters[a.Platform()] = a
	}

	return &Engine{
		log:      logger.With("component", "engine"),
		opts:     opts,
		now:      opts.Now,
		adapters: adapters,
	}
}

// Process converts one raw export into a ProcessResult. The hint selects
// the adapter; PlatformAuto tries each adapter in fixed priority order and
// accepts the first that yields at least one real message.
func (e *Engine) Process(input string, hint ingest.Platform) ingest.ProcessResult {
	start := time.Now()

	var res ingest.ProcessResult
	switch hint {
	case ingest.PlatformAuto, "":
		res = e.autoDetect(input)
	default:
		adapter, ok := e.adapters[hint]
		if !ok {
			e.log.Warn("unknown platform hint", "platform", hint)
			return ingest.SystemResult(ingest.WarnInvalidFormat, "unknown platform: "+string(hint), e.now())
		}
		res = adapter.Parse(input)
		res.Platform = hint
	}

	res = e.postprocess(res)

	e.log.Info("ingestion finished",
		"platform", hint,
		"messages", len(res.Messages),
		"total", res.Stats.TotalMessages,
		"valid_dates", res.Stats.ValidDateMessages,
		"warnings", len(res.Warnings),
		"duration", time.Since(start))
	return res
}

func (e *Engine) autoDetect(input string) ingest.ProcessResult {
	for _, p := range autoOrder {
		res := e.adapters[p].Parse(input)
		if res.HasRealMessages() {
			e.log.Debug("auto-detected platform", "platform", p)
			res.Platform = p
			return res
		}
	}
	return ingest.SystemResult(ingest.WarnInvalidFormat, "no adapter recognized the input", e.now())
}

// postprocess sorts, deduplicates, and attaches stream-level warnings. It
// guarantees a non-empty message slice: total parse failure leaves one
// synthetic System message plus a no_messages warning.
func (e *Engine) postprocess(res ingest.ProcessResult) ingest.ProcessResult {
	ingest.SortMessages(res.Messages)
	before := len(res.Messages)
	res.Messages = ingest.Deduplicate(res.Messages, e.opts.DedupWindow, e.opts.SimilarityThreshold)
	if removed := before - len(res.Messages); removed > 0 {
		e.log.Debug("removed near-duplicate messages", "count", removed)
	}
	e.opts.Progress.Report(ingest.StagePostprocess, len(res.Messages), before)

	if !res.HasRealMessages() {
		if len(res.Messages) == 0 {
			res = mergeWarnings(ingest.SystemResult(ingest.WarnNoMessages, "no messages found in input", e.now()), res)
		} else if !hasWarning(res.Warnings, ingest.WarnNoMessages) {
			res.Warnings = append(res.Warnings, ingest.WarnNoMessages)
		}
		return res
	}

	if len(res.Participants()) < 2 && !hasWarning(res.Warnings, ingest.WarnSingleParticipant) {
		res.Warnings = append(res.Warnings, ingest.WarnSingleParticipant)
	}
	return res
}

// mergeWarnings keeps the synthetic result but preserves warnings and
// counters gathered before the failure.
func mergeWarnings(synthetic, original ingest.ProcessResult) ingest.ProcessResult {
	for _, w := range original.Warnings {
		if !hasWarning(synthetic.Warnings, w) {
			synthetic.Warnings = append(synthetic.Warnings, w)
		}
	}
	synthetic.Stats = original.Stats
	synthetic.Platform = original.Platform
	return synthetic
}

func hasWarning(warnings []ingest.WarningCode, code ingest.WarningCode) bool {
	for _, w := range warnings {
		if w == code {
			return true
		}
	}
	return false
}
