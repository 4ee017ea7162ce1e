package internal

import (
	"strings"
	"testing"
)

func TestAudioFilename(t *testing.T) {
	name := AudioFilename("001_故意_1", "他故意不告诉我。")

	if !strings.HasPrefix(name, "tts_") {
		t.Errorf("Expected tts_ prefix, got %s", name)
	}
	if !strings.HasSuffix(name, ".mp3") {
		t.Errorf("Expected .mp3 suffix, got %s", name)
	}

	// Same input must always produce the same filename
	again := AudioFilename("001_故意_1", "他故意不告诉我。")
	if name != again {
		t.Errorf("Filename not deterministic: %s vs %s", name, again)
	}

	// Different text must produce a different filename
	other := AudioFilename("001_故意_1", "她不知道这件事。")
	if name == other {
		t.Errorf("Different text produced identical filename: %s", name)
	}

	// Different ID must produce a different filename
	otherID := AudioFilename("002_故意_1", "他故意不告诉我。")
	if name == otherID {
		t.Errorf("Different ID produced identical filename: %s", name)
	}
}

func TestAudioFilenameLongText(t *testing.T) {
	long := strings.Repeat("很长的句子", 50)
	name := AudioFilename("id1", long)

	if len(name) > 60 {
		t.Errorf("Filename too long (%d chars): %s", len(name), name)
	}

	// Text beyond the prefix limit still feeds the hash via the seed prefix,
	// so two texts that share the first 20 runes collide by design.
	same := AudioFilename("id1", long+"后缀")
	if name != same {
		t.Errorf("Expected identical filename for texts sharing the prefix, got %s vs %s", name, same)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain ascii", "hello", "hello"},
		{"spaces replaced", "my deck name", "my_deck_name"},
		{"chinese kept", "汉语词汇", "汉语词汇"},
		{"punctuation replaced", "a/b:c", "a_b_c"},
		{"dash and underscore kept", "a-b_c", "a-b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
