package platform

import (
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/edgard/chatlens/internal/ingest"
)

// snapchatAdapter maps Snapchat's chat_history.json: top-level arrays
// keyed by direction ("Received Chat History", "Sent Chat History"), each
// entry carrying From/To, Media Type, Created, and Content for text
// messages. Sent entries have no sender name, so they are attributed to
// the account owner as "Me".
type snapchatAdapter struct {
	now func() time.Time
	log *slog.Logger
}

// NewSnapchat builds the Snapchat JSON adapter.
func NewSnapchat(opts Options) Adapter {
	return &snapchatAdapter{now: opts.clock(), log: opts.logger().With("adapter", "snapchat")}
}

func (a *snapchatAdapter) Platform() ingest.Platform {
	return ingest.PlatformSnapchat
}

// snapchatSections maps export keys to the sender attribution used when
// the entry itself lacks one.
var snapchatSections = []struct {
	key    string
	isSent bool
}{
	{"Received Chat History", false},
	{"Sent Chat History", true},
	{"Received Saved Chat Messages", false},
	{"Sent Saved Chat Messages", true},
}

const snapchatOwner = "Me"

func (a *snapchatAdapter) Parse(input string) ingest.ProcessResult {
	if !gjson.Valid(input) {
		return ingest.SystemResult(ingest.WarnInvalidFormat, "not valid JSON", a.now())
	}

	root := gjson.Parse(input)
	found := false
	var res ingest.ProcessResult
	for _, section := range snapchatSections {
		arr := root.Get(section.key)
		if !arr.IsArray() {
			continue
		}
		found = true
		isSent := section.isSent
		arr.ForEach(func(_, msg gjson.Result) bool {
			a.appendMessage(msg, isSent, &res)
			return true
		})
	}

	if !found {
		if root.Get("Basic Information").Exists() || root.Get("Account Creation Date").Exists() {
			return ingest.SystemResult(ingest.WarnMetadataFile, "snapchat account file, not a chat history export", a.now())
		}
		return ingest.SystemResult(ingest.WarnInvalidFormat, "missing chat history arrays", a.now())
	}
	if res.Stats.TotalMessages == 0 {
		return ingest.SystemResult(ingest.WarnNoMessages, "empty chat history", a.now())
	}

	a.log.Debug("snapchat parse finished", "messages", res.Stats.TotalMessages)
	return res
}

func (a *snapchatAdapter) appendMessage(msg gjson.Result, isSent bool, res *ingest.ProcessResult) {
	sender := msg.Get("From").String()
	if isSent {
		sender = snapchatOwner
	}
	if sender == "" {
		return
	}

	literal := msg.Get("Created").String()
	var date time.Time
	if t, err := time.Parse("2006-01-02 15:04:05 MST", literal); err == nil {
		date = t.UTC()
	} else if t, err := time.Parse("2006-01-02 15:04:05", literal); err == nil {
		date = t.UTC()
	}

	text := msg.Get("Content").String()
	if text == "" {
		text = msg.Get("Text").String()
	}
	media := false
	if text == "" {
		switch msg.Get("Media Type").String() {
		case "TEXT", "":
			return
		case "STICKER":
			text = placeholder("Sticker", 1)
		case "NOTE":
			text = placeholder("Voice note", 1)
		default:
			text = placeholder("Media", 1)
		}
		media = true
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
