// Package ingest converts heterogeneous chat-export dumps into a normalized,
// deduplicated, chronologically ordered message stream. It holds the shared
// data model consumed by the platform adapters, the processing engine, and
// the analysis layer.
package ingest

import "time"

// Platform identifies the messaging platform an export came from. Auto asks
// the engine to probe each adapter in priority order.
type Platform string

const (
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformInstagram Platform = "instagram"
	PlatformDiscord   Platform = "discord"
	PlatformTelegram  Platform = "telegram"
	PlatformSnapchat  Platform = "snapchat"
	PlatformAuto      Platform = "auto"
)

// WarningCode is a stable string identifier attached to a ProcessResult.
// Codes are meant for presentation-layer localization; the engine never
// emits human-facing prose, only codes plus optional detail strings.
type WarningCode string

const (
	WarnNoMessages        WarningCode = "no_messages"
	WarnSingleParticipant WarningCode = "single_participant"
	WarnMetadataFile      WarningCode = "metadata_file_not_data_file"
	WarnInvalidFormat     WarningCode = "invalid_format"
)

// RawEntry holds the literal substrings extracted from one logical line
// before any date interpretation. It exists only between extraction and
// normalization.
type RawEntry struct {
	DatePart string
	TimePart string
	Sender   string
	Message  string
}

// NormalizedMessage is the canonical unit consumed by every analysis module.
// Timestamp preserves the original literal; Date is the resolved absolute
// time, with the zero value meaning no date could be derived at all.
// Messages are immutable once produced.
type NormalizedMessage struct {
	Timestamp string    `json:"timestamp"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Date      time.Time `json:"date"`
}

// HasDate reports whether a resolved date is present.
func (m NormalizedMessage) HasDate() bool {
	return !m.Date.IsZero()
}

// Stats carries the processing counters for one ingestion run.
// TotalMessages >= ValidDateMessages always holds.
type Stats struct {
	TotalMessages          int `json:"total_messages"`
	ValidDateMessages      int `json:"valid_date_messages"`
	FilteredSystemMessages int `json:"filtered_system_messages"`
	FilteredMediaMessages  int `json:"filtered_media_messages"`
}

// ProcessResult is the externally visible artifact of one ingestion run.
// Messages is never empty: total parse failure yields a single synthetic
// "System" message plus a warning code, so downstream consumers never have
// to special-case an empty stream.
type ProcessResult struct {
	Platform Platform            `json:"platform,omitempty"`
	Messages []NormalizedMessage `json:"messages"`
	Warnings []WarningCode       `json:"warnings"`
	Stats    Stats               `json:"stats"`
}

// SystemSender is the sender name used for synthetic placeholder messages
// produced when an input cannot be parsed at all.
const SystemSender = "System"

// SystemResult builds a ProcessResult containing one synthetic System
// message carrying the diagnostic detail, tagged with the given code.
func SystemResult(code WarningCode, detail string, now time.Time) ProcessResult {
	return ProcessResult{
		Messages: []NormalizedMessage{{
			Timestamp: now.Format("2006-01-02 15:04:05"),
			Sender:    SystemSender,
			Message:   detail,
			Date:      now,
		}},
		Warnings: []WarningCode{code},
		Stats:    Stats{},
	}
}

// HasRealMessages reports whether the result contains at least one message
// that is not a synthetic System placeholder. Used by auto-detection.
func (r ProcessResult) HasRealMessages() bool {
	for _, m := range r.Messages {
		if m.Sender != SystemSender {
			return true
		}
	}
	return false
}

// Participants returns the distinct non-system sender names in first-seen
// order.
func (r ProcessResult) Participants() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range r.Messages {
		if m.Sender == SystemSender {
			continue
		}
		if _, ok := seen[m.Sender]; ok {
			continue
		}
		seen[m.Sender] = struct{}{}
		out = append(out, m.Sender)
	}
	return out
}
