package model

import "time"

// WordTimestamp is per-word timing reported by the voice synthesizer.
// When present it is treated as ground truth for caption timing.
type WordTimestamp struct {
	Word      string  `json:"word"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

type CharacterTimestamp struct {
	Character string  `json:"character"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// CaptionCue is a single caption and its on-screen window, in seconds.
// Cues in a timeline are ordered and never overlap.
type CaptionCue struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

type CaptionFont string

const (
	FontCalibri CaptionFont = "calibri"
	FontArial   CaptionFont = "arial"
	FontImpact  CaptionFont = "impact"
)

type CaptionSize string

const (
	SizeSmall  CaptionSize = "small"
	SizeMedium CaptionSize = "medium"
	SizeLarge  CaptionSize = "large"
)

type CaptionPosition string

const (
	PositionTop    CaptionPosition = "top"
	PositionMiddle CaptionPosition = "middle"
	PositionBottom CaptionPosition = "bottom"
)

// CaptionStyle selects caption rendering parameters. Zero values fall
// back to the defaults (Impact, medium, middle).
type CaptionStyle struct {
	Font     CaptionFont     `json:"font,omitempty"`
	Size     CaptionSize     `json:"size,omitempty"`
	Position CaptionPosition `json:"position,omitempty"`
}

type AssetKind string

const (
	AssetBackground AssetKind = "background"
	AssetVoice      AssetKind = "voice"
)

// RenderJob is one render invocation. It is owned by a single
// orchestrator call for its whole lifetime and never shared between
// concurrent renders.
type RenderJob struct {
	ScriptText           string          `json:"script"`
	BackgroundVideo      string          `json:"background_video"` // URL, s3://, or local path
	VoiceAudio           string          `json:"voice_audio,omitempty"` // URL, s3://, or local path; empty to synthesize from the script
	AudioDurationSeconds float64         `json:"audio_duration_s"`
	OutputPath           string          `json:"output_path"`
	WordTimestamps       []WordTimestamp `json:"word_timestamps,omitempty"`
	CaptionStyle         *CaptionStyle   `json:"caption_style,omitempty"`
	VoiceCharacter       string          `json:"voice_character,omitempty"`
	Title                string          `json:"title,omitempty"`
}

type Recap struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	VideoKey  string    `json:"video_key"`
	DurationS float64   `json:"duration_s"`
	CreatedAt time.Time `json:"created_at"`
	SHA256    string    `json:"sha256"`
}

type RecapIndex struct {
	UpdatedAt time.Time `json:"updated_at"`
	Items     []Recap   `json:"items"`
}
