package engine_test

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/edgard/chatlens/internal/engine"
	"github.com/edgard/chatlens/internal/ingest"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestEngine() *engine.Engine {
	opts := engine.DefaultOptions()
	opts.Now = testClock
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return engine.New(log, opts)
}

const whatsappExport = `12/03/2024, 21:15 - Messages and calls are end-to-end encrypted
12/03/2024, 21:15 - Alice: hey, how are you?
12/03/2024, 21:16 - Bob: doing great thanks
still wrapping this line
12/03/2024, 21:16 - Bob: doing great thanks
still wrapping this line
12/03/2024, 21:17 - Alice: <Media omitted>
`

func TestProcess_WhatsApp(t *testing.T) {
	t.Parallel()

	res := newTestEngine().Process(whatsappExport, ingest.PlatformWhatsApp)

	if res.Platform != ingest.PlatformWhatsApp {
		t.Errorf("platform = %q, want whatsapp", res.Platform)
	}
	if len(res.Messages) != 3 {
		t.Fatalf("messages = %d, want 3 (duplicate collapsed)", len(res.Messages))
	}
	if res.Stats.TotalMessages != 4 {
		t.Errorf("total = %d, want 4", res.Stats.TotalMessages)
	}
	if res.Stats.ValidDateMessages != 4 {
		t.Errorf("valid dates = %d, want 4", res.Stats.ValidDateMessages)
	}
	if res.Stats.FilteredSystemMessages != 1 {
		t.Errorf("filtered system = %d, want 1", res.Stats.FilteredSystemMessages)
	}
	if res.Stats.FilteredMediaMessages != 1 {
		t.Errorf("filtered media = %d, want 1", res.Stats.FilteredMediaMessages)
	}
	if res.Stats.TotalMessages < res.Stats.ValidDateMessages {
		t.Error("total must never be below valid date count")
	}
	if res.Messages[2].Message != "[Media]" {
		t.Errorf("media placeholder = %q, want [Media]", res.Messages[2].Message)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings)
	}
	for i := 1; i < len(res.Messages); i++ {
		if res.Messages[i].Date.Before(res.Messages[i-1].Date) {
			t.Errorf("messages not in chronological order at %d", i)
		}
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	t.Parallel()

	res := newTestEngine().Process("", ingest.PlatformWhatsApp)

	if len(res.Messages) != 1 {
		t.Fatalf("messages = %d, want exactly one placeholder", len(res.Messages))
	}
	if res.Messages[0].Sender != ingest.SystemSender {
		t.Errorf("sender = %q, want %q", res.Messages[0].Sender, ingest.SystemSender)
	}
	if !hasWarning(res.Warnings, ingest.WarnNoMessages) {
		t.Errorf("warnings = %v, want no_messages", res.Warnings)
	}
	if res.Stats.TotalMessages != 0 {
		t.Errorf("total = %d, want 0", res.Stats.TotalMessages)
	}
}

func TestProcess_BinaryGarbage(t *testing.T) {
	t.Parallel()

	res := newTestEngine().Process("\x00\x01\x02\xff\xfe", ingest.PlatformAuto)

	if len(res.Messages) == 0 {
		t.Fatal("messages empty, want at least the placeholder")
	}
	if res.HasRealMessages() {
		t.Error("garbage input produced real messages")
	}
	if len(res.Warnings) == 0 {
		t.Error("garbage input produced no warnings")
	}
}

func TestProcess_Deterministic(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	first := e.Process(whatsappExport, ingest.PlatformWhatsApp)
	second := e.Process(whatsappExport, ingest.PlatformWhatsApp)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Process calls disagree on identical input")
	}
}

func TestProcess_SingleParticipantWarning(t *testing.T) {
	t.Parallel()

	input := "12/03/2024, 21:15 - Alice: talking to myself\n12/03/2024, 21:20 - Alice: still am\n"
	res := newTestEngine().Process(input, ingest.PlatformWhatsApp)

	if !hasWarning(res.Warnings, ingest.WarnSingleParticipant) {
		t.Errorf("warnings = %v, want single_participant", res.Warnings)
	}
}

func TestProcess_UnknownPlatform(t *testing.T) {
	t.Parallel()

	res := newTestEngine().Process("anything", ingest.Platform("myspace"))

	if !hasWarning(res.Warnings, ingest.WarnInvalidFormat) {
		t.Errorf("warnings = %v, want invalid_format", res.Warnings)
	}
}

func TestProcess_AutoDetect(t *testing.T) {
	t.Parallel()

	telegramExport := `{"name": "chat", "messages": [
		{"type": "message", "from": "Alice", "date": "2024-03-12T21:15:00", "text": "hi"},
		{"type": "message", "from": "Bob", "date": "2024-03-12T21:16:00", "text": "hello"}
	]}`

	tests := []struct {
		name     string
		input    string
		expected ingest.Platform
	}{
		{"Telegram JSON", telegramExport, ingest.PlatformTelegram},
		{"WhatsApp text", whatsappExport, ingest.PlatformWhatsApp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := newTestEngine().Process(tt.input, ingest.PlatformAuto)
			if res.Platform != tt.expected {
				t.Errorf("detected platform = %q, want %q", res.Platform, tt.expected)
			}
			if !res.HasRealMessages() {
				t.Error("auto-detected result has no real messages")
			}
		})
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
