package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recap-video-gen/internal"
	"recap-video-gen/internal/logging"
)

func newTestSynthesizer(serverURL string) *Synthesizer {
	return &Synthesizer{
		apiKey:  "test-key",
		baseURL: serverURL,
		http:    &http.Client{},
		log:     logging.Discard(),
	}
}

func alignmentResponse(text string, audio []byte) map[string]any {
	runes := []rune(text)
	chars := make([]string, len(runes))
	starts := make([]float64, len(runes))
	ends := make([]float64, len(runes))
	for i, r := range runes {
		chars[i] = string(r)
		starts[i] = float64(i) * 0.1
		ends[i] = float64(i+1) * 0.1
	}
	return map[string]any{
		"audio_base64": base64.StdEncoding.EncodeToString(audio),
		"alignment": map[string]any{
			"characters":                    chars,
			"character_start_times_seconds": starts,
			"character_end_times_seconds":   ends,
		},
	}
}

func TestSynthesizerGenerate(t *testing.T) {
	text := "Hi there"
	audio := []byte("fake audio bytes")

	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(alignmentResponse(text, audio))
	}))
	defer srv.Close()

	s := newTestSynthesizer(srv.URL)
	result, err := s.Generate(context.Background(), text, SynthesisOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("xi-api-key = %q", gotKey)
	}
	if want := "/v1/text-to-speech/" + voiceCharacters[defaultCharacter] + "/with-timestamps"; gotPath != want {
		t.Errorf("request path = %q, want %q", gotPath, want)
	}
	if gotBody["text"] != text {
		t.Errorf("request text = %v", gotBody["text"])
	}
	if gotBody["model_id"] != "eleven_monolingual_v1" {
		t.Errorf("model_id = %v", gotBody["model_id"])
	}

	if string(result.Audio) != string(audio) {
		t.Errorf("audio = %q, want %q", result.Audio, audio)
	}
	if len(result.CharacterTimestamps) != len([]rune(text)) {
		t.Errorf("got %d character timestamps, want %d", len(result.CharacterTimestamps), len([]rune(text)))
	}
	if len(result.WordTimestamps) != 2 {
		t.Fatalf("got %d word timestamps, want 2", len(result.WordTimestamps))
	}
	if result.WordTimestamps[0].Word != "Hi" || result.WordTimestamps[1].Word != "there" {
		t.Errorf("words = %q, %q", result.WordTimestamps[0].Word, result.WordTimestamps[1].Word)
	}
	if result.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2", result.WordCount)
	}
	if result.DurationSeconds < MinDurationSeconds || result.DurationSeconds > MaxDurationSeconds {
		t.Errorf("DurationSeconds = %.1f outside bounds", result.DurationSeconds)
	}
}

func TestSynthesizerGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	s := newTestSynthesizer(srv.URL)
	_, err := s.Generate(context.Background(), "hello", SynthesisOptions{})
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error %q does not surface response body", err)
	}
}

func TestSynthesizerGenerate_MissingAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"alignment":{}}`))
	}))
	defer srv.Close()

	s := newTestSynthesizer(srv.URL)
	_, err := s.Generate(context.Background(), "hello", SynthesisOptions{})
	if err == nil || !strings.Contains(err.Error(), "no audio data") {
		t.Errorf("err = %v, want missing-audio error", err)
	}
}

func TestSynthesizerGenerate_NoAlignment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"audio_base64": base64.StdEncoding.EncodeToString([]byte("audio")),
		})
	}))
	defer srv.Close()

	s := newTestSynthesizer(srv.URL)
	result, err := s.Generate(context.Background(), "hello world", SynthesisOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.WordTimestamps != nil {
		t.Errorf("expected no word timestamps, got %d", len(result.WordTimestamps))
	}
}

func TestNewSynthesizerBaseURL(t *testing.T) {
	s := NewSynthesizer(internal.Config{}, logging.Discard())
	if s.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want default", s.baseURL)
	}
	s = NewSynthesizer(internal.Config{ElevenLabsBaseURL: "http://localhost:9999"}, logging.Discard())
	if s.baseURL != "http://localhost:9999" {
		t.Errorf("baseURL = %q, want override", s.baseURL)
	}
}

func TestResolveCharacter(t *testing.T) {
	s := newTestSynthesizer("")
	tests := []struct {
		name string
		opts SynthesisOptions
		want string
	}{
		{"empty defaults to storyteller", SynthesisOptions{}, "storyteller"},
		{"explicit character kept", SynthesisOptions{Character: "asmr"}, "asmr"},
		{"match celeb with mapped background", SynthesisOptions{Character: "match celeb", BackgroundVideo: "theo-von"}, "theo von"},
		{"match celeb with unmapped background", SynthesisOptions{Character: "match celeb", BackgroundVideo: "minecraft"}, "storyteller"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.resolveCharacter(tt.opts); got != tt.want {
				t.Errorf("resolveCharacter = %q, want %q", got, tt.want)
			}
		})
	}
}
