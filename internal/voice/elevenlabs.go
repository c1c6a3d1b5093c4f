package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"recap-video-gen/internal"
	"recap-video-gen/internal/logging"
	"recap-video-gen/internal/model"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Voice character roster mapped to synthesizer voice IDs.
var voiceCharacters = map[string]string{
	"storyteller":         "hfgNmTYYctMgJ7E2s6Vx",
	"asmr":                "RBknfnzK8KHNwv44gIrh",
	"trump":               "Tw2LVqLUUWkxqrCfFOpw",
	"lebron":              "5F6a8n4ijdCrImoXgxM9",
	"matthew mcconaughey": "Mu5jxyqZOLIGltFpfalg",
	"theo von":            "LNV6ahDtkAOqwn1X3R7a",
	"ronaldo":             "IP2syKL31S2JthzSSfZH",
	"elon musk":           "XLghPxSVv9YaNtcIwfbt",
}

// Background-video selections mapped to their matching voice.
var backgroundCharacters = map[string]string{
	"lebron":     "lebron",
	"ronaldo":    "ronaldo",
	"trump":      "trump",
	"theo-von":   "theo von",
	"matthew-mc": "matthew mcconaughey",
	"elon-musk":  "elon musk",
}

const defaultCharacter = "storyteller"

// CharacterForBackground returns the voice character matching a
// background-video selection, or empty when there is none.
func CharacterForBackground(background string) string {
	return backgroundCharacters[background]
}

func voiceIDForCharacter(character string) string {
	if id, ok := voiceCharacters[character]; ok {
		return id
	}
	return voiceCharacters[defaultCharacter]
}

type SynthesisOptions struct {
	Character       string
	BackgroundVideo string
	Stability       float64
	SimilarityBoost float64
	MaxDuration     float64
}

type SynthesisResult struct {
	Audio               []byte
	DurationSeconds     float64
	WordCount           int
	EstimatedDuration   float64
	CharacterTimestamps []model.CharacterTimestamp
	WordTimestamps      []model.WordTimestamp
}

// Synthesizer generates voiceover audio with per-word timing from the
// ElevenLabs with-timestamps endpoint.
type Synthesizer struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *logging.Logger
}

func NewSynthesizer(cfg internal.Config, log *logging.Logger) *Synthesizer {
	baseURL := cfg.ElevenLabsBaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Synthesizer{
		apiKey:  cfg.ElevenLabsAPIKey,
		baseURL: baseURL,
		http:    &http.Client{},
		log:     log,
	}
}

func (s *Synthesizer) Generate(ctx context.Context, text string, opts SynthesisOptions) (*SynthesisResult, error) {
	maxDuration := opts.MaxDuration
	if maxDuration <= 0 {
		maxDuration = MaxDurationSeconds
	}
	if maxDuration > 300 {
		s.log.Warnf("voice: very long duration requested (%.0fs), capping to 300s", maxDuration)
		maxDuration = 300
	}

	validation := ValidateText(text, maxDuration)
	if !validation.IsValid {
		s.log.Warnf("voice: script of %d words (~%.1fs) exceeds the %.0fs budget, proceeding anyway",
			validation.WordCount, validation.EstimatedDuration, maxDuration)
	}

	character := s.resolveCharacter(opts)
	voiceID := voiceIDForCharacter(character)
	s.log.Infof("voice: synthesizing %d words with voice %s (character %q)",
		validation.WordCount, voiceID, character)

	stability := opts.Stability
	if stability == 0 {
		stability = 0.5
	}
	similarity := opts.SimilarityBoost
	if similarity == 0 {
		similarity = 0.5
	}

	payload, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": "eleven_monolingual_v1",
		"voice_settings": map[string]float64{
			"stability":        stability,
			"similarity_boost": similarity,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/with-timestamps", s.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice synthesis request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read voice synthesis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voice synthesis api: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	audioB64 := gjson.GetBytes(body, "audio_base64")
	if !audioB64.Exists() || audioB64.String() == "" {
		return nil, fmt.Errorf("voice synthesis api: no audio data in response")
	}
	audio, err := base64.StdEncoding.DecodeString(audioB64.String())
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	result := &SynthesisResult{
		Audio:             audio,
		WordCount:         validation.WordCount,
		EstimatedDuration: validation.EstimatedDuration,
	}

	alignment := gjson.GetBytes(body, "alignment")
	if alignment.Exists() {
		result.CharacterTimestamps = parseAlignment(alignment)
		result.WordTimestamps = WordsFromCharacters(text, result.CharacterTimestamps)
		s.log.Infof("voice: %d character timestamps -> %d word timestamps",
			len(result.CharacterTimestamps), len(result.WordTimestamps))
	} else {
		s.log.Warnf("voice: no timing data in response, captions will fall back to estimation")
	}

	result.DurationSeconds = ResolveDuration(ctx, audio, text, s.log)
	return result, nil
}

func (s *Synthesizer) resolveCharacter(opts SynthesisOptions) string {
	character := opts.Character
	if character != "match celeb" {
		if character == "" {
			return defaultCharacter
		}
		return character
	}
	if matched := CharacterForBackground(opts.BackgroundVideo); matched != "" {
		s.log.Infof("voice: matched background %q to character %q", opts.BackgroundVideo, matched)
		return matched
	}
	s.log.Infof("voice: no matching voice for background %q, using %s", opts.BackgroundVideo, defaultCharacter)
	return defaultCharacter
}

func parseAlignment(alignment gjson.Result) []model.CharacterTimestamp {
	chars := alignment.Get("characters").Array()
	starts := alignment.Get("character_start_times_seconds").Array()
	ends := alignment.Get("character_end_times_seconds").Array()
	if len(chars) == 0 || len(starts) != len(chars) || len(ends) != len(chars) {
		return nil
	}

	out := make([]model.CharacterTimestamp, 0, len(chars))
	for i := range chars {
		out = append(out, model.CharacterTimestamp{
			Character: chars[i].String(),
			StartTime: starts[i].Float(),
			EndTime:   ends[i].Float(),
		})
	}
	return out
}
