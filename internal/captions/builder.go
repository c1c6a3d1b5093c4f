package captions

import (
	"fmt"
	"math"
	"strings"

	"recap-video-gen/internal/model"
)

// Fallback timing parameters. Tuned for readability of short-form
// vertical video, not for transcript fidelity.
const (
	// Captions appear slightly before the audio so the viewer has
	// started reading by the time the word is spoken.
	captionLeadTime = 0.3

	// Share of the total duration actually spent speaking; the rest is
	// natural pauses not reflected in the word count.
	naturalPauseFactor = 0.85

	minCueDuration  = 2.0
	maxCueDuration  = 3.0
	extensionFactor = 2.5

	// Gap enforced between consecutive cues by the de-overlap pass.
	cueGap = 0.1

	// Below this the de-overlap pass prefers giving time back to the
	// following cue.
	softFloorDuration = 0.5

	// Absolute minimum display time. Enforced last; the following
	// cue's start is pushed up if needed.
	hardFloorDuration = 0.2
)

// placeholderText is emitted as a single full-length cue when the
// script tokenizes to zero words.
const placeholderText = "NO TEXT"

type Stage string

const (
	StageTokenize  Stage = "tokenize"
	StageChunk     Stage = "chunk"
	StageDeoverlap Stage = "deoverlap"
)

// GenerationError reports which stage of the fallback path failed.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("caption generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// BuildTimeline produces the ordered cue sequence for one render.
// When word timestamps are available they are authoritative and mapped
// one-to-one; otherwise timing is simulated from the script text and
// the total duration.
func BuildTimeline(script string, totalDuration float64, words []model.WordTimestamp) ([]model.CaptionCue, error) {
	if len(words) > 0 {
		return FromWordTimestamps(words), nil
	}
	return FromScript(script, totalDuration)
}

// FromWordTimestamps maps each word timestamp to exactly one cue,
// preserving order and passing the timing through untouched.
func FromWordTimestamps(words []model.WordTimestamp) []model.CaptionCue {
	cues := make([]model.CaptionCue, 0, len(words))
	for _, w := range words {
		cues = append(cues, model.CaptionCue{
			Text:      strings.ToLower(w.Word),
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}
	return cues
}

// FromScript simulates caption timing from the script alone: words are
// grouped into small chunks, each chunk gets an extended display
// window clamped to [minCueDuration, maxCueDuration], and a final pass
// removes overlaps.
func FromScript(script string, totalDuration float64) ([]model.CaptionCue, error) {
	words := strings.Fields(script)
	if len(words) == 0 {
		return []model.CaptionCue{{Text: placeholderText, StartTime: 0, EndTime: totalDuration}}, nil
	}

	effectiveDuration := totalDuration * naturalPauseFactor
	secondsPerWord := effectiveDuration / float64(len(words))

	var cues []model.CaptionCue
	idx := 0
	pos := 0.0

	for idx < len(words) {
		remaining := len(words) - idx
		size := chunkSize(words, idx, remaining)
		if size < 1 || size > remaining {
			return nil, &GenerationError{Stage: StageChunk,
				Err: fmt.Errorf("chunk size %d out of range at word %d (remaining %d)", size, idx, remaining)}
		}

		text := strings.ToLower(strings.Join(words[idx:idx+size], " "))

		chunkDuration := float64(size) * secondsPerWord
		adjusted := chunkDuration * extensionFactor
		adjusted = math.Max(minCueDuration, math.Min(maxCueDuration, adjusted))

		cues = append(cues, model.CaptionCue{
			Text:      text,
			StartTime: math.Max(0, pos-captionLeadTime),
			EndTime:   math.Min(totalDuration, pos+adjusted-captionLeadTime),
		})

		idx += size
		// Position advances by the unextended duration; the extension
		// only widens the display window.
		pos += chunkDuration
	}

	deoverlap(cues)

	for i := 0; i+1 < len(cues); i++ {
		if cues[i].EndTime > cues[i+1].StartTime {
			return nil, &GenerationError{Stage: StageDeoverlap,
				Err: fmt.Errorf("cue %d ends at %.2f after cue %d starts at %.2f",
					i, cues[i].EndTime, i+1, cues[i+1].StartTime)}
		}
	}

	return cues, nil
}

// deoverlap walks the timeline left to right, clamping each cue's end
// below the next cue's start. The clamp is best-effort: a cue keeps at
// least softFloorDuration when possible, but the following cue wins
// when both cannot fit. A final pass enforces hardFloorDuration,
// pushing the next cue's start up instead of truncating further.
func deoverlap(cues []model.CaptionCue) {
	for i := 0; i+1 < len(cues); i++ {
		cur := &cues[i]
		next := &cues[i+1]

		if cur.EndTime > next.StartTime-cueGap {
			cur.EndTime = next.StartTime - cueGap

			if cur.EndTime-cur.StartTime < softFloorDuration {
				cur.EndTime = cur.StartTime + softFloorDuration
				if cur.EndTime > next.StartTime-cueGap {
					cur.EndTime = next.StartTime - cueGap
				}
			}
		}
	}

	for i := range cues {
		cur := &cues[i]
		if cur.EndTime < cur.StartTime+hardFloorDuration {
			cur.EndTime = cur.StartTime + hardFloorDuration
		}
		if i+1 < len(cues) && cues[i+1].StartTime < cur.EndTime {
			cues[i+1].StartTime = cur.EndTime
		}
	}
}
