package media

import (
	"context"
	"fmt"
	"strings"
)

// Target canvas for every render: vertical 1080x1920 at 30fps.
const (
	VideoWidth  = 1080
	VideoHeight = 1920
	FPS         = 30
)

// EncodeSpec describes one composite encode: scale and pad the
// background to the canvas, loop it indefinitely, burn in the subtitle
// track, replace audio with the voice track, and trim the output to
// DurationSeconds. The trim is the sole stop signal for the loop.
type EncodeSpec struct {
	BackgroundPath  string
	VoiceAudioPath  string
	SubtitlePath    string
	OutputPath      string
	DurationSeconds float64
}

// Encoder runs one encode to completion. Implementations may shell out
// to ffmpeg, bind a library, or call a remote service; the orchestrator
// only depends on this interface.
type Encoder interface {
	Encode(ctx context.Context, spec EncodeSpec) error
}

// ProcessError reports a non-zero exit of the external engine. Partial
// output must be treated as absent regardless of bytes written.
type ProcessError struct {
	Stderr string
	Err    error
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("encode process failed: %v", e.Err)
	}
	return fmt.Sprintf("encode process failed: %v: %s", e.Err, msg)
}

func (e *ProcessError) Unwrap() error { return e.Err }
