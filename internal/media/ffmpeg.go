package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"recap-video-gen/internal/logging"
)

// Encoder tunables. veryfast/28 trades a little quality for render
// latency; faststart relocates the moov atom for progressive playback.
const (
	videoPreset  = "veryfast"
	videoCRF     = "28"
	audioBitrate = "96k"
	threadCount  = "4"
)

// FFmpeg shells out to the ffmpeg binary. A channel semaphore caps the
// number of concurrent processes to avoid thread exhaustion under
// batch load.
type FFmpeg struct {
	sem chan struct{}
	log *logging.Logger
}

func NewFFmpeg(concurrency int, log *logging.Logger) *FFmpeg {
	if concurrency < 1 {
		concurrency = 1
	}
	return &FFmpeg{sem: make(chan struct{}, concurrency), log: log}
}

func (f *FFmpeg) Encode(ctx context.Context, spec EncodeSpec) error {
	if _, err := os.Stat(spec.BackgroundPath); err != nil {
		return fmt.Errorf("background file not found: %s (%w)", spec.BackgroundPath, err)
	}
	if _, err := os.Stat(spec.VoiceAudioPath); err != nil {
		return fmt.Errorf("voice audio file not found: %s (%w)", spec.VoiceAudioPath, err)
	}
	if _, err := os.Stat(spec.SubtitlePath); err != nil {
		return fmt.Errorf("subtitle file not found: %s (%w)", spec.SubtitlePath, err)
	}

	select {
	case f.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-f.sem }()

	args := buildEncodeArgs(spec)
	f.log.Infof("[FFMPEG] executing encode (duration=%.2fs, output=%s)", spec.DurationSeconds, spec.OutputPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		f.log.Errorf("[FFMPEG] encode failed: %v: %s", err, stderr.String())
		return &ProcessError{Stderr: stderr.String(), Err: err}
	}

	if _, err := os.Stat(spec.OutputPath); err != nil {
		return &ProcessError{Stderr: stderr.String(),
			Err: fmt.Errorf("ffmpeg exited 0 but output missing: %s (%w)", spec.OutputPath, err)}
	}

	f.log.Infof("[FFMPEG] encode completed, output file: %s", spec.OutputPath)
	return nil
}

// buildEncodeArgs constructs the single-pass invocation. The
// background is looped without bound; -t against the voice duration is
// the only length control, which sidesteps loop-count math entirely.
func buildEncodeArgs(spec EncodeSpec) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-stream_loop", "-1",
		"-i", spec.BackgroundPath,
		"-i", spec.VoiceAudioPath,
		"-threads", threadCount,
		"-filter_complex", buildFilterGraph(spec.SubtitlePath),
		"-map", "[v]",
		"-map", "[audio_out]",
		"-c:v", "libx264",
		"-preset", videoPreset,
		"-crf", videoCRF,
		"-r", fmt.Sprintf("%d", FPS),
		"-pix_fmt", "yuv420p",
		"-t", fmt.Sprintf("%.3f", spec.DurationSeconds),
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-ar", "44100",
		"-movflags", "+faststart",
		"-tune", "fastdecode",
		spec.OutputPath,
	}
}

// buildFilterGraph scales the background into the canvas preserving
// aspect ratio, pads the rest with black, normalizes the frame rate,
// burns in the subtitle track, and takes audio only from the voice
// input (the background's own audio is never mapped).
func buildFilterGraph(subtitlePath string) string {
	return fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,fps=%d[scaled];[scaled]ass='%s'[v];[1:a]volume=1.0[audio_out]",
		VideoWidth, VideoHeight, VideoWidth, VideoHeight, FPS, escapeFilterPath(subtitlePath))
}

// escapeFilterPath quotes a path for use inside an ffmpeg filter
// argument.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	return strings.ReplaceAll(p, `'`, `\'`)
}
