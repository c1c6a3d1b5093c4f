package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/mowshon/moviego"
	"github.com/tidwall/gjson"
)

const probeTimeout = 30 * time.Second

// ProbeDuration extracts the exact container duration in seconds via
// ffprobe.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	ctxProbe, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctxProbe, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	raw := gjson.GetBytes(out, "format.duration")
	if !raw.Exists() {
		return 0, fmt.Errorf("ffprobe %s: no duration in output", path)
	}
	d, err := strconv.ParseFloat(raw.String(), 64)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("ffprobe %s: invalid duration %q", path, raw.String())
	}
	return d, nil
}

// safeLoad wraps moviego.Load, which panics on some corrupt inputs.
func safeLoad(path string) (vid moviego.Video, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("moviego.Load panicked: %v", r)
		}
	}()
	vid, err = moviego.Load(path)
	return
}

// ValidateClip checks that the background clip actually decodes and
// returns its native duration.
func ValidateClip(path string) (float64, error) {
	v, err := safeLoad(path)
	if err != nil {
		return 0, fmt.Errorf("validate clip %s: %w", path, err)
	}
	return v.Duration(), nil
}
