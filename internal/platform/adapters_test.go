package platform_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/edgard/chatlens/internal/ingest"
	"github.com/edgard/chatlens/internal/platform"
)

func testOptions() platform.Options {
	return platform.Options{
		DayFirst: true,
		Now: func() time.Time {
			return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func hasWarning(warnings []ingest.WarningCode, code ingest.WarningCode) bool {
	for _, w := range warnings {
		if w == code {
			return true
		}
	}
	return false
}

func TestWhatsApp_Parse(t *testing.T) {
	t.Parallel()

	input := "[12/03/2024, 21:15:33] Alice: hey\n[12/03/2024, 21:16:01] Bob: image omitted\n[12/03/2024, 21:17:00] Alice: back at\n9 maybe?\n"
	res := platform.NewWhatsApp(testOptions()).Parse(input)

	if res.Stats.TotalMessages != 3 {
		t.Fatalf("total = %d, want 3", res.Stats.TotalMessages)
	}
	if res.Stats.ValidDateMessages != 3 {
		t.Errorf("valid dates = %d, want 3", res.Stats.ValidDateMessages)
	}
	if res.Stats.FilteredMediaMessages != 1 {
		t.Errorf("filtered media = %d, want 1", res.Stats.FilteredMediaMessages)
	}
	if res.Messages[1].Message != "[Image]" {
		t.Errorf("media placeholder = %q, want [Image]", res.Messages[1].Message)
	}
	if res.Messages[2].Message != "back at\n9 maybe?" {
		t.Errorf("multiline message = %q, want internal newline preserved", res.Messages[2].Message)
	}
	if res.Messages[0].Timestamp != "12/03/2024, 21:15:33" {
		t.Errorf("timestamp literal = %q", res.Messages[0].Timestamp)
	}
	expected := time.Date(2024, 3, 12, 21, 15, 33, 0, time.UTC)
	if !res.Messages[0].Date.Equal(expected) {
		t.Errorf("date = %v, want %v", res.Messages[0].Date, expected)
	}
}

func TestWhatsApp_SystemLinesFiltered(t *testing.T) {
	t.Parallel()

	input := "12/03/2024, 21:15 - Messages and calls are end-to-end encrypted\n12/03/2024, 21:16 - Alice: real one\n"
	res := platform.NewWhatsApp(testOptions()).Parse(input)

	if res.Stats.FilteredSystemMessages != 1 {
		t.Errorf("filtered system = %d, want 1", res.Stats.FilteredSystemMessages)
	}
	if res.Stats.TotalMessages != 1 {
		t.Errorf("total = %d, want 1", res.Stats.TotalMessages)
	}
}

func TestInstagram_Parse(t *testing.T) {
	t.Parallel()

	input := `{
		"participants": [{"name": "Alice"}, {"name": "Bob"}],
		"messages": [
			{"sender_name": "Bob", "timestamp_ms": 1710277200000, "content": "hello"},
			{"sender_name": "Alice", "timestamp_ms": 1710277260000, "photos": [{"uri": "a.jpg"}, {"uri": "b.jpg"}]},
			{"sender_name": "Bob", "timestamp_ms": 1710277320000, "share": {"link": "https://example.com"}}
		]
	}`
	res := platform.NewInstagram(testOptions()).Parse(input)

	if res.Stats.TotalMessages != 3 {
		t.Fatalf("total = %d, want 3", res.Stats.TotalMessages)
	}
	if res.Messages[0].Message != "hello" {
		t.Errorf("content = %q, want hello", res.Messages[0].Message)
	}
	if res.Messages[1].Message != "[Photo x2]" {
		t.Errorf("photo placeholder = %q, want [Photo x2]", res.Messages[1].Message)
	}
	if res.Messages[2].Message != "[Shared link]" {
		t.Errorf("share placeholder = %q, want [Shared link]", res.Messages[2].Message)
	}
	if res.Stats.FilteredMediaMessages != 2 {
		t.Errorf("filtered media = %d, want 2", res.Stats.FilteredMediaMessages)
	}
	expected := time.UnixMilli(1710277200000).UTC()
	if !res.Messages[0].Date.Equal(expected) {
		t.Errorf("date = %v, want %v", res.Messages[0].Date, expected)
	}
}

func TestInstagram_MetadataFile(t *testing.T) {
	t.Parallel()

	res := platform.NewInstagram(testOptions()).Parse(`{"profile_user": [{"string_map_data": {}}]}`)

	if !hasWarning(res.Warnings, ingest.WarnMetadataFile) {
		t.Errorf("warnings = %v, want metadata_file_not_data_file", res.Warnings)
	}
	if res.HasRealMessages() {
		t.Error("metadata file produced real messages")
	}
}

func TestInstagram_InvalidJSON(t *testing.T) {
	t.Parallel()

	res := platform.NewInstagram(testOptions()).Parse("not json at all {")

	if !hasWarning(res.Warnings, ingest.WarnInvalidFormat) {
		t.Errorf("warnings = %v, want invalid_format", res.Warnings)
	}
}

func TestDiscord_Parse(t *testing.T) {
	t.Parallel()

	input := `{
		"channel": {"name": "general"},
		"messages": [
			{"type": "Default", "timestamp": "2024-03-12T21:15:00+00:00", "content": "hi there", "author": {"name": "alice", "nickname": "Ali"}},
			{"type": "Reply", "timestamp": "2024-03-12T21:16:00+00:00", "content": "hello", "author": {"name": "bob"}},
			{"type": "GuildMemberJoin", "timestamp": "2024-03-12T21:17:00+00:00", "content": "", "author": {"name": "carol"}},
			{"type": "Default", "timestamp": "2024-03-12T21:18:00+00:00", "content": "", "author": {"name": "bob"}, "attachments": [{"url": "x.png"}]}
		]
	}`
	res := platform.NewDiscord(testOptions()).Parse(input)

	if res.Stats.TotalMessages != 3 {
		t.Fatalf("total = %d, want 3", res.Stats.TotalMessages)
	}
	if res.Stats.FilteredSystemMessages != 1 {
		t.Errorf("filtered system = %d, want 1", res.Stats.FilteredSystemMessages)
	}
	if res.Messages[0].Sender != "Ali" {
		t.Errorf("sender = %q, want nickname Ali", res.Messages[0].Sender)
	}
	if res.Messages[2].Message != "[Attachment]" {
		t.Errorf("attachment placeholder = %q, want [Attachment]", res.Messages[2].Message)
	}
	expected := time.Date(2024, 3, 12, 21, 15, 0, 0, time.UTC)
	if !res.Messages[0].Date.Equal(expected) {
		t.Errorf("date = %v, want %v", res.Messages[0].Date, expected)
	}
}

func TestTelegram_Parse(t *testing.T) {
	t.Parallel()

	input := `{
		"name": "Alice",
		"type": "personal_chat",
		"messages": [
			{"type": "service", "action": "phone_call", "from": "Alice", "date": "2024-03-12T21:14:00"},
			{"type": "message", "from": "Alice", "date": "2024-03-12T21:15:00", "text": "plain"},
			{"type": "message", "from": "Bob", "date": "2024-03-12T21:16:00", "text": ["see ", {"type": "link", "text": "this"}, " now"]},
			{"type": "message", "from": "Alice", "date": "2024-03-12T21:17:00", "text": "", "media_type": "voice_message"}
		]
	}`
	res := platform.NewTelegram(testOptions()).Parse(input)

	if res.Stats.TotalMessages != 3 {
		t.Fatalf("total = %d, want 3", res.Stats.TotalMessages)
	}
	if res.Stats.FilteredSystemMessages != 1 {
		t.Errorf("filtered system = %d, want 1", res.Stats.FilteredSystemMessages)
	}
	if res.Messages[1].Message != "see this now" {
		t.Errorf("flattened text = %q, want %q", res.Messages[1].Message, "see this now")
	}
	if res.Messages[2].Message != "[Voice message]" {
		t.Errorf("voice placeholder = %q, want [Voice message]", res.Messages[2].Message)
	}
}

func TestTelegram_ChatsList(t *testing.T) {
	t.Parallel()

	input := `{
		"chats": {"list": [
			{"name": "one", "messages": [{"type": "message", "from": "Alice", "date": "2024-03-12T21:15:00", "text": "a"}]},
			{"name": "two", "messages": [{"type": "message", "from": "Bob", "date": "2024-03-12T21:16:00", "text": "b"}]}
		]}
	}`
	res := platform.NewTelegram(testOptions()).Parse(input)

	if res.Stats.TotalMessages != 2 {
		t.Errorf("total = %d, want 2 across chats", res.Stats.TotalMessages)
	}
}

func TestTelegram_MetadataFile(t *testing.T) {
	t.Parallel()

	res := platform.NewTelegram(testOptions()).Parse(`{"personal_information": {"first_name": "A"}, "contacts": {"list": []}}`)

	if !hasWarning(res.Warnings, ingest.WarnMetadataFile) {
		t.Errorf("warnings = %v, want metadata_file_not_data_file", res.Warnings)
	}
}

func TestSnapchat_Parse(t *testing.T) {
	t.Parallel()

	input := `{
		"Received Chat History": [
			{"From": "alicesnap", "Media Type": "TEXT", "Created": "2024-03-12 21:15:00 UTC", "Content": "hey"},
			{"From": "alicesnap", "Media Type": "MEDIA", "Created": "2024-03-12 21:16:00 UTC"}
		],
		"Sent Chat History": [
			{"From": "", "Media Type": "TEXT", "Created": "2024-03-12 21:17:00 UTC", "Content": "hi back"}
		]
	}`
	res := platform.NewSnapchat(testOptions()).Parse(input)

	if res.Stats.TotalMessages != 3 {
		t.Fatalf("total = %d, want 3", res.Stats.TotalMessages)
	}
	if res.Messages[2].Sender != "Me" {
		t.Errorf("sent sender = %q, want Me", res.Messages[2].Sender)
	}
	if res.Messages[1].Message != "[Media]" {
		t.Errorf("media placeholder = %q, want [Media]", res.Messages[1].Message)
	}
	if res.Stats.FilteredMediaMessages != 1 {
		t.Errorf("filtered media = %d, want 1", res.Stats.FilteredMediaMessages)
	}
}

func TestSnapchat_MetadataFile(t *testing.T) {
	t.Parallel()

	res := platform.NewSnapchat(testOptions()).Parse(`{"Basic Information": {"Username": "alicesnap"}}`)

	if !hasWarning(res.Warnings, ingest.WarnMetadataFile) {
		t.Errorf("warnings = %v, want metadata_file_not_data_file", res.Warnings)
	}
}

func TestSnapchat_EmptyHistory(t *testing.T) {
	t.Parallel()

	res := platform.NewSnapchat(testOptions()).Parse(`{"Received Chat History": [], "Sent Chat History": []}`)

	if !hasWarning(res.Warnings, ingest.WarnNoMessages) {
		t.Errorf("warnings = %v, want no_messages", res.Warnings)
	}
}
