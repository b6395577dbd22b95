package platform

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/edgard/chatlens/internal/ingest"
)

// telegramAdapter maps Telegram Desktop's JSON export: either a single
// chat object with a messages array, or the full result.json whose chats
// are nested under chats.list. Service entries (joins, pins, calls) count
// as system messages; text fields may be plain strings or arrays of
// formatted fragments.
type telegramAdapter struct {
	now func() time.Time
	log *slog.Logger
}

// NewTelegram builds the Telegram JSON adapter.
func NewTelegram(opts Options) Adapter {
	return &telegramAdapter{now: opts.clock(), log: opts.logger().With("adapter", "telegram")}
}

func (a *telegramAdapter) Platform() ingest.Platform {
	return ingest.PlatformTelegram
}

func (a *telegramAdapter) Parse(input string) ingest.ProcessResult {
	if !gjson.Valid(input) {
		return ingest.SystemResult(ingest.WarnInvalidFormat, "not valid JSON", a.now())
	}

	root := gjson.Parse(input)
	var chats []gjson.Result
	switch {
	case root.Get("messages").IsArray():
		chats = []gjson.Result{root}
	case root.Get("chats.list").IsArray():
		chats = root.Get("chats.list").Array()
	case root.Get("personal_information").Exists() || root.Get("contacts").Exists():
		return ingest.SystemResult(ingest.WarnMetadataFile, "telegram account export without chat data", a.now())
	default:
		return ingest.SystemResult(ingest.WarnInvalidFormat, "missing messages array", a.now())
	}

	var res ingest.ProcessResult
	for _, chat := range chats {
		chat.Get("messages").ForEach(func(_, msg gjson.Result) bool {
			a.appendMessage(msg, &res)
			return true
		})
	}
	if res.Stats.TotalMessages == 0 && len(res.Messages) == 0 && res.Stats.FilteredSystemMessages == 0 {
		return ingest.SystemResult(ingest.WarnNoMessages, "empty messages array", a.now())
	}

	a.log.Debug("telegram parse finished", "messages", res.Stats.TotalMessages, "chats", len(chats))
	return res
}

func (a *telegramAdapter) appendMessage(msg gjson.Result, res *ingest.ProcessResult) {
	if msg.Get("type").String() == "service" {
		res.Stats.FilteredSystemMessages++
		return
	}

	sender := msg.Get("from").String()
	if sender == "" {
		return
	}

	literal := msg.Get("date").String()
	var date time.Time
	if t, err := time.Parse("2006-01-02T15:04:05", literal); err == nil {
		date = t.UTC()
	}

	text, media := a.messageText(msg)
	if text == "" {
		return
	}
	if media {
		res.Stats.FilteredMediaMessages++
	}

	res.Messages = append(res.Messages, ingest.NormalizedMessage{
		Timestamp: literal,
		Sender:    sender,
		Message:   text,
		Date:      date,
	})
	res.Stats.TotalMessages++
	if !date.IsZero() {
		res.Stats.ValidDateMessages++
	}
}

// messageText flattens Telegram's text field, which is either a plain
// string or an array mixing strings with formatted-entity objects, and
// synthesizes placeholders for media-only entries.
func (a *telegramAdapter) messageText(msg gjson.Result) (string, bool) {
	text := flattenText(msg.Get("text"))
	if text != "" {
		return text, false
	}

	switch mediaType := msg.Get("media_type").String(); mediaType {
	case "sticker":
		return placeholder("Sticker", 1), true
	case "voice_message":
		return placeholder("Voice message", 1), true
	case "video_message", "video_file":
		return placeholder("Video", 1), true
	case "animation":
		return placeholder("GIF", 1), true
	case "audio_file":
		return placeholder("Audio", 1), true
	}
	if msg.Get("photo").Exists() {
		return placeholder("Photo", 1), true
	}
	if msg.Get("file").Exists() {
		return placeholder("File", 1), true
	}
	if msg.Get("contact_information").Exists() {
		return placeholder("Contact", 1), true
	}
	if msg.Get("location_information").Exists() {
		return placeholder("Location", 1), true
	}
	return "", false
}

func flattenText(text gjson.Result) string {
	if text.Type == gjson.String {
		return text.String()
	}
	if !text.IsArray() {
		return ""
	}
	var b strings.Builder
	text.ForEach(func(_, part gjson.Result) bool {
		if part.Type == gjson.String {
			b.WriteString(part.String())
		} else {
			b.WriteString(part.Get("text").String())
		}
		return true
	})
	return b.String()
}
