package voice

import (
	"context"
	"strings"
	"testing"

	"recap-video-gen/internal/logging"
)

func TestEstimateFromText(t *testing.T) {
	// 150 words at 2.5 w/s is 60s; the character estimate pulls the
	// average around depending on word length.
	text := strings.TrimSpace(strings.Repeat("hello ", 150))
	got := EstimateFromText(text)
	if got < 50 || got > 70 {
		t.Errorf("150-word estimate = %.1fs, want around 60s", got)
	}
}

func TestEstimateFromText_Clamped(t *testing.T) {
	if got := EstimateFromText("hi"); got != MinDurationSeconds {
		t.Errorf("tiny text estimate = %.1f, want min %.1f", got, MinDurationSeconds)
	}
	long := strings.Repeat("word ", 2000)
	if got := EstimateFromText(long); got != MaxDurationSeconds {
		t.Errorf("huge text estimate = %.1f, want max %.1f", got, MaxDurationSeconds)
	}
}

func TestEstimateFromSize(t *testing.T) {
	tests := []struct {
		bytes int
		want  float64
	}{
		{1024 * 1024, 60},               // 1 MB ≈ 1 minute
		{512 * 1024, 30},                // half
		{0, MinDurationSeconds},         // clamp up
		{10 * 1024 * 1024, MaxDurationSeconds}, // clamp down
	}
	for _, tt := range tests {
		if got := EstimateFromSize(tt.bytes); got != tt.want {
			t.Errorf("EstimateFromSize(%d) = %.1f, want %.1f", tt.bytes, got, tt.want)
		}
	}
}

func TestValidateText(t *testing.T) {
	v := ValidateText("one two three four five", 60)
	if !v.IsValid {
		t.Error("5 words in 60s should be valid")
	}
	if v.WordCount != 5 {
		t.Errorf("WordCount = %d, want 5", v.WordCount)
	}
	if v.EstimatedDuration != 2.0 {
		t.Errorf("EstimatedDuration = %.2f, want 2.00", v.EstimatedDuration)
	}
	if v.MaxWords != 135 { // 60s * 2.5 w/s * 0.9
		t.Errorf("MaxWords = %d, want 135", v.MaxWords)
	}

	over := ValidateText(strings.Repeat("word ", 200), 10)
	if over.IsValid {
		t.Error("200 words cannot fit in 10s")
	}
}

func TestResolveDuration_FallsBackToTextEstimate(t *testing.T) {
	// A junk buffer that ffprobe cannot parse (or a missing ffprobe
	// binary) must degrade to estimation, never fail.
	audio := []byte("definitely not an mp3")
	script := strings.Repeat("hello ", 150)
	got := ResolveDuration(context.Background(), audio, script, logging.Discard())
	if got < MinDurationSeconds || got > MaxDurationSeconds {
		t.Errorf("fallback duration %.1f outside bounds", got)
	}
}

func TestResolveDuration_EmptyScriptUsesSizeEstimate(t *testing.T) {
	audio := make([]byte, 512*1024)
	got := ResolveDuration(context.Background(), audio, "", logging.Discard())
	if got != 30 {
		t.Errorf("size-based fallback = %.1f, want 30", got)
	}
}
