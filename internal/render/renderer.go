package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recap-video-gen/internal"
	"recap-video-gen/internal/assets"
	"recap-video-gen/internal/captions"
	"recap-video-gen/internal/logging"
	"recap-video-gen/internal/media"
	"recap-video-gen/internal/model"
	"recap-video-gen/internal/subtitles"
	"recap-video-gen/internal/voice"
)

// Renderer assembles a finished vertical video for a single job:
// resolve assets, build the caption timeline, burn subtitles, encode.
// Safe for concurrent use; each Render call owns its own temp files.
type Renderer struct {
	cfg     internal.Config
	fetcher *assets.Fetcher
	encoder media.Encoder
	synth   *voice.Synthesizer
	log     *logging.Logger

	probe func(ctx context.Context, path string) (float64, error)
}

// NewRenderer builds a renderer. synth may be nil; jobs that omit
// voice_audio then fail instead of synthesizing.
func NewRenderer(cfg internal.Config, fetcher *assets.Fetcher, encoder media.Encoder, synth *voice.Synthesizer, log *logging.Logger) *Renderer {
	return &Renderer{
		cfg:     cfg,
		fetcher: fetcher,
		encoder: encoder,
		synth:   synth,
		log:     log,
		probe:   media.ProbeDuration,
	}
}

// Render runs a job end to end. All steps within the job are
// sequential; the whole job is bounded by the configured render
// timeout, which kills a running encode process on expiry. Job-scoped
// temp files are removed whether the render succeeds or fails.
func (r *Renderer) Render(ctx context.Context, job *model.RenderJob) error {
	if err := validateJob(job); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.RenderTimeout)
	defer cancel()

	var temps []string
	defer func() {
		for _, p := range temps {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				r.log.Warnf("render: leaving temp file %s: %v", p, err)
			}
		}
	}()

	nonce := time.Now().UnixNano()

	bgPath := job.BackgroundVideo
	if assets.IsRemote(job.BackgroundVideo) {
		dest := filepath.Join(os.TempDir(), fmt.Sprintf("bg-%d.mp4", nonce))
		resolved, err := r.fetcher.Resolve(ctx, job.BackgroundVideo, model.AssetBackground, dest)
		if err != nil {
			return err
		}
		bgPath = resolved
		temps = append(temps, resolved)
	}

	if native, err := media.ValidateClip(bgPath); err != nil {
		r.log.Warnf("render: background clip %s failed validation: %v", bgPath, err)
	} else {
		r.log.Infof("render: background clip %s, native duration %.1fs", bgPath, native)
	}

	duration := job.AudioDurationSeconds
	words := job.WordTimestamps

	voicePath := job.VoiceAudio
	switch {
	case voicePath == "":
		if strings.TrimSpace(job.ScriptText) == "" {
			return fmt.Errorf("render: job has neither voice audio nor a script to synthesize it from")
		}
		if r.synth == nil {
			return fmt.Errorf("render: job has no voice audio and no synthesizer is configured")
		}
		result, err := r.synth.Generate(ctx, job.ScriptText, voice.SynthesisOptions{
			Character:       job.VoiceCharacter,
			BackgroundVideo: backgroundKey(job.BackgroundVideo),
		})
		if err != nil {
			return fmt.Errorf("render: synthesize voice: %w", err)
		}
		voicePath = filepath.Join(os.TempDir(), fmt.Sprintf("voice-%d.mp3", nonce))
		if err := os.WriteFile(voicePath, result.Audio, 0o644); err != nil {
			return fmt.Errorf("render: write synthesized voice: %w", err)
		}
		temps = append(temps, voicePath)
		if duration <= 0 {
			duration = result.DurationSeconds
		}
		if len(words) == 0 {
			words = result.WordTimestamps
		}
	case assets.IsRemote(voicePath):
		dest := filepath.Join(os.TempDir(), fmt.Sprintf("voice-%d.mp3", nonce))
		resolved, err := r.fetcher.Resolve(ctx, voicePath, model.AssetVoice, dest)
		if err != nil {
			return err
		}
		voicePath = resolved
		temps = append(temps, resolved)
	}

	if duration <= 0 {
		probed, err := r.probe(ctx, voicePath)
		if err != nil {
			return fmt.Errorf("render: job has no audio duration and probing %s failed: %w", voicePath, err)
		}
		if probed > voice.MaxDurationSeconds {
			r.log.Warnf("render: probed voice duration %.1fs exceeds the %.0fs ceiling, trimming",
				probed, voice.MaxDurationSeconds)
			probed = voice.MaxDurationSeconds
		}
		r.log.Infof("render: probed voice duration %.2fs", probed)
		duration = probed
	}

	cues, err := captions.BuildTimeline(job.ScriptText, duration, words)
	if err != nil {
		return err
	}
	r.log.Infof("render: %d caption cues over %.1fs", len(cues), duration)

	subPath := filepath.Join(os.TempDir(), fmt.Sprintf("subs-%d.ass", nonce))
	if err := os.WriteFile(subPath, []byte(subtitles.EncodeASS(cues, job.CaptionStyle)), 0o644); err != nil {
		return fmt.Errorf("render: write subtitle file: %w", err)
	}
	temps = append(temps, subPath)

	if err := r.encoder.Encode(ctx, media.EncodeSpec{
		BackgroundPath:  bgPath,
		VoiceAudioPath:  voicePath,
		SubtitlePath:    subPath,
		OutputPath:      job.OutputPath,
		DurationSeconds: duration,
	}); err != nil {
		return err
	}

	if r.cfg.EmitSRT {
		srtPath := strings.TrimSuffix(job.OutputPath, filepath.Ext(job.OutputPath)) + ".srt"
		if err := os.WriteFile(srtPath, []byte(subtitles.EncodeSRT(cues)), 0o644); err != nil {
			return fmt.Errorf("render: write srt sidecar: %w", err)
		}
		r.log.Infof("render: wrote %s", srtPath)
	}

	r.log.Infof("render: wrote %s", job.OutputPath)
	return nil
}

func validateJob(job *model.RenderJob) error {
	switch {
	case job == nil:
		return fmt.Errorf("render: nil job")
	case job.BackgroundVideo == "":
		return fmt.Errorf("render: job has no background video")
	case job.OutputPath == "":
		return fmt.Errorf("render: job has no output path")
	}
	return nil
}

// backgroundKey reduces a background reference to its bare name so it
// can be matched against the voice character map.
func backgroundKey(ref string) string {
	base := filepath.Base(ref)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
