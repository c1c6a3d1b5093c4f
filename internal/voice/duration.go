package voice

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recap-video-gen/internal/logging"
	"recap-video-gen/internal/media"
)

// Synthesizer speaking-rate constants (150 words per minute).
const (
	wordsPerSecond = 2.5
	charsPerSecond = 12.5
)

// Duration bounds for a single voiceover.
const (
	MinDurationSeconds = 5.0
	MaxDurationSeconds = 120.0
)

// ResolveDuration derives the authoritative output duration from the
// synthesized audio. It probes the container via ffprobe (capped at
// the hard ceiling) and degrades to estimation when probing is
// unavailable; it never fails.
func ResolveDuration(ctx context.Context, audio []byte, script string, log *logging.Logger) float64 {
	d, err := probeBuffer(ctx, audio)
	if err != nil {
		log.Warnf("voice: duration probe failed, using estimation: %v", err)
		if strings.TrimSpace(script) != "" {
			return EstimateFromText(script)
		}
		return EstimateFromSize(len(audio))
	}
	if d > MaxDurationSeconds {
		log.Infof("voice: duration capped %.1fs -> %.1fs", d, MaxDurationSeconds)
		d = MaxDurationSeconds
	}
	return d
}

// probeBuffer stages the buffer in a scratch file for ffprobe. The
// scratch file is removed unconditionally.
func probeBuffer(ctx context.Context, audio []byte) (float64, error) {
	if len(audio) == 0 {
		return 0, fmt.Errorf("empty audio buffer")
	}

	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("voice-probe-%d.mp3", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, audio, 0o644); err != nil {
		return 0, fmt.Errorf("write probe scratch file: %w", err)
	}
	defer os.Remove(tmp)

	return media.ProbeDuration(ctx, tmp)
}

// EstimateFromText estimates speech duration from word and character
// counts, averaging the two rates, clamped to the duration bounds.
func EstimateFromText(text string) float64 {
	text = strings.TrimSpace(text)
	words := len(strings.Fields(text))
	chars := len(text)

	wordBased := float64(words) / wordsPerSecond
	charBased := float64(chars) / charsPerSecond
	return clampDuration((wordBased + charBased) / 2)
}

// EstimateFromSize estimates duration from the compressed buffer size,
// assuming roughly 1 MB per minute at 128 kbps.
func EstimateFromSize(sizeBytes int) float64 {
	sizeMB := float64(sizeBytes) / (1024 * 1024)
	return clampDuration(sizeMB * 60)
}

func clampDuration(d float64) float64 {
	return math.Max(MinDurationSeconds, math.Min(MaxDurationSeconds, d))
}

// TextValidation is the pre-synthesis word-budget check.
type TextValidation struct {
	IsValid           bool
	WordCount         int
	EstimatedDuration float64
	MaxWords          int
}

// ValidateText reports whether text fits within maxDuration at the
// synthesizer's speaking rate, with a 10% buffer on the word budget.
func ValidateText(text string, maxDuration float64) TextValidation {
	words := strings.Fields(strings.TrimSpace(text))
	estimated := float64(len(words)) / wordsPerSecond
	return TextValidation{
		IsValid:           estimated <= maxDuration,
		WordCount:         len(words),
		EstimatedDuration: estimated,
		MaxWords:          int(maxDuration * wordsPerSecond * 0.9),
	}
}
