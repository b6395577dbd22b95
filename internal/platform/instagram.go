package platform

import (
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/edgard/chatlens/internal/ingest"
)

// instagramAdapter maps Instagram's message_1.json export shape:
// a top-level participants array plus a messages array carrying
// sender_name, timestamp_ms, and content or media arrays.
type instagramAdapter struct {
	now func() time.Time
	log *slog.Logger
}

// NewInstagram builds the Instagram JSON adapter.
func NewInstagram(opts Options) Adapter {
	return &instagramAdapter{now: opts.clock(), log: opts.logger().With("adapter", "instagram")}
}

func (a *instagramAdapter) Platform() ingest.Platform {
	return ingest.PlatformInstagram
}

func (a *instagramAdapter) Parse(input string) ingest.ProcessResult {
	if !gjson.Valid(input) {
		return ingest.SystemResult(ingest.WarnInvalidFormat, "not valid JSON", a.now())
	}

	root := gjson.Parse(input)
	messages := root.Get("messages")
	if !messages.IsArray() {
		// Instagram data downloads ship metadata files (profile,
		// device info) alongside the conversation files.
		if root.Get("profile_user").Exists() || root.Get("devices").Exists() {
			return ingest.SystemResult(ingest.WarnMetadataFile, "instagram metadata file, not a conversation export", a.now())
		}
		return ingest.SystemResult(ingest.WarnInvalidFormat, "missing messages array", a.now())
	}
	if len(messages.Array()) == 0 {
		return ingest.SystemResult(ingest.WarnNoMessages, "empty messages array", a.now())
	}

	var res ingest.ProcessResult
	messages.ForEach(func(_, msg gjson.Result) bool {
		sender := msg.Get("sender_name").String()
		if sender == "" {
			return true
		}

		ms := msg.Get("timestamp_ms").Int()
		var date time.Time
		if ms > 0 {
			date = time.UnixMilli(ms).UTC()
		}

		text, media := a.messageText(msg)
		if text == "" {
			return true
		}
		if media {
			res.Stats.FilteredMediaMessages++
		}

		res.Messages = append(res.Messages, ingest.NormalizedMessage{
			Timestamp: date.Format("2006-01-02 15:04:05"),
			Sender:    sender,
			Message:   text,
			Date:      date,
		})
		res.Stats.TotalMessages++
		if !date.IsZero() {
			res.Stats.ValidDateMessages++
		}
		return true
	})

	a.log.Debug("instagram parse finished", "messages", res.Stats.TotalMessages)
	return res
}

// messageText returns the message content or a placeholder for
// attachment-only and reaction-only entries. The bool reports whether the
// text is a media placeholder.
func (a *instagramAdapter) messageText(msg gjson.Result) (string, bool) {
	if content := msg.Get("content").String(); content != "" {
		return content, false
	}
	if photos := msg.Get("photos"); photos.IsArray() {
		return placeholder("Photo", len(photos.Array())), true
	}
	if videos := msg.Get("videos"); videos.IsArray() {
		return placeholder("Video", len(videos.Array())), true
	}
	if audio := msg.Get("audio_files"); audio.IsArray() {
		return placeholder("Audio", len(audio.Array())), true
	}
	if msg.Get("sticker").Exists() {
		return placeholder("Sticker", 1), true
	}
	if msg.Get("share").Exists() {
		return placeholder("Shared link", 1), true
	}
	if reactions := msg.Get("reactions"); reactions.IsArray() && len(reactions.Array()) > 0 {
		return placeholder("Reaction", 1), true
	}
	return "", false
}
