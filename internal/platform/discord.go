package platform

import (
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/edgard/chatlens/internal/ingest"
)

// discordAdapter maps DiscordChatExporter-style JSON: a messages array of
// objects with an author, an RFC 3339 timestamp, content, and attachment,
// embed, and sticker arrays. Non-default message types (joins, pins,
// boosts) count as system messages.
type discordAdapter struct {
	now func() time.Time
	log *slog.Logger
}

// NewDiscord builds the Discord JSON adapter.
func NewDiscord(opts Options) Adapter {
	return &discordAdapter{now: opts.clock(), log: opts.logger().With("adapter", "discord")}
}

func (a *discordAdapter) Platform() ingest.Platform {
	return ingest.PlatformDiscord
}

func (a *discordAdapter) Parse(input string) ingest.ProcessResult {
	if !gjson.Valid(input) {
		return ingest.SystemResult(ingest.WarnInvalidFormat, "not valid JSON", a.now())
	}

	root := gjson.Parse(input)
	messages := root.Get("messages")
	if !messages.IsArray() {
		return ingest.SystemResult(ingest.WarnInvalidFormat, "missing messages array", a.now())
	}
	if len(messages.Array()) == 0 {
		return ingest.SystemResult(ingest.WarnNoMessages, "empty messages array", a.now())
	}

	var res ingest.ProcessResult
	messages.ForEach(func(_, msg gjson.Result) bool {
		msgType := msg.Get("type").String()
		if msgType != "" && msgType != "Default" && msgType != "Reply" {
			res.Stats.FilteredSystemMessages++
			return true
		}

		sender := msg.Get("author.nickname").String()
		if sender == "" {
			sender = msg.Get("author.name").String()
		}
		if sender == "" {
			sender = msg.Get("author.username").String()
		}
		if sender == "" {
			return true
		}

		literal := msg.Get("timestamp").String()
		var date time.Time
		if t, err := time.Parse(time.RFC3339, literal); err == nil {
			date = t.UTC()
		}

		text, media := a.messageText(msg)
		if text == "" {
			return true
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
		return true
	})

	a.log.Debug("discord parse finished", "messages", res.Stats.TotalMessages)
	return res
}

func (a *discordAdapter) messageText(msg gjson.Result) (string, bool) {
	if content := msg.Get("content").String(); content != "" {
		return content, false
	}
	if attachments := msg.Get("attachments"); attachments.IsArray() && len(attachments.Array()) > 0 {
		return placeholder("Attachment", len(attachments.Array())), true
	}
	if stickers := msg.Get("stickers"); stickers.IsArray() && len(stickers.Array()) > 0 {
		return placeholder("Sticker", len(stickers.Array())), true
	}
	if embeds := msg.Get("embeds"); embeds.IsArray() && len(embeds.Array()) > 0 {
		return placeholder("Embed", len(embeds.Array())), true
	}
	return "", false
}
