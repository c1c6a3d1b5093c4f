package subtitles

import (
	"strings"
	"testing"

	"recap-video-gen/internal/model"
)

func TestFormatASSTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00.00"},
		{0.4, "0:00:00.40"},
		{1.5, "0:00:01.50"},
		{59.99, "0:00:59.98"}, // floating point: math.Mod(59.99, 1)*100 ≈ 98.99
		{61.25, "0:01:01.25"},
		{3600, "1:00:00.00"},
		{3661.25, "1:01:01.25"},
	}
	for _, tt := range tests {
		if got := formatASSTime(tt.seconds); got != tt.want {
			t.Errorf("formatASSTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestEncodeASS_DefaultStyle(t *testing.T) {
	cues := []model.CaptionCue{
		{Text: "hi", StartTime: 0, EndTime: 0.4},
		{Text: "there", StartTime: 0.4, EndTime: 0.9},
	}

	doc := EncodeASS(cues, nil)

	if !strings.Contains(doc, "PlayResX: 1080") || !strings.Contains(doc, "PlayResY: 1920") {
		t.Error("canvas resolution header missing or wrong")
	}
	if !strings.Contains(doc, "Style: Default,Impact,100,&Hffffff,&Hffffff,&H000000,&H000000,4,0,0,0,100,100,0,0,1,4,1,5,60,60,0,1") {
		t.Errorf("default style line wrong:\n%s", doc)
	}
	if !strings.Contains(doc, "Dialogue: 0,0:00:00.00,0:00:00.40,Default,,0,0,0,,hi") {
		t.Errorf("first dialogue line missing:\n%s", doc)
	}
	if !strings.Contains(doc, "Dialogue: 0,0:00:00.40,0:00:00.90,Default,,0,0,0,,there") {
		t.Errorf("second dialogue line missing:\n%s", doc)
	}
}

func TestEncodeASS_EmptyCues(t *testing.T) {
	doc := EncodeASS(nil, nil)
	if !strings.Contains(doc, "[Events]") {
		t.Error("empty timeline must still produce a valid document")
	}
	if strings.Contains(doc, "Dialogue:") {
		t.Error("empty timeline must produce zero events")
	}
}

func TestEncodeASS_PreservesInputOrder(t *testing.T) {
	// The encoder does not re-sort; ordering is the builder's contract.
	cues := []model.CaptionCue{
		{Text: "second", StartTime: 5, EndTime: 6},
		{Text: "first", StartTime: 0, EndTime: 1},
	}
	doc := EncodeASS(cues, nil)
	if strings.Index(doc, ",second") > strings.Index(doc, ",first") {
		t.Error("cue order changed by encoder")
	}
}

func TestResolveStyle(t *testing.T) {
	tests := []struct {
		name  string
		style *model.CaptionStyle
		want  ResolvedStyle
	}{
		{"nil style", nil, ResolvedStyle{"Impact", 100, 5, 0}},
		{"empty style", &model.CaptionStyle{}, ResolvedStyle{"Impact", 100, 5, 0}},
		{"small top arial", &model.CaptionStyle{Font: model.FontArial, Size: model.SizeSmall, Position: model.PositionTop},
			ResolvedStyle{"Arial", 80, 8, 340}},
		{"large bottom calibri", &model.CaptionStyle{Font: model.FontCalibri, Size: model.SizeLarge, Position: model.PositionBottom},
			ResolvedStyle{"Calibri", 120, 2, 340}},
		{"medium middle", &model.CaptionStyle{Size: model.SizeMedium, Position: model.PositionMiddle},
			ResolvedStyle{"Impact", 100, 5, 0}},
		{"unknown values fall back", &model.CaptionStyle{Font: "comic", Size: "huge", Position: "left"},
			ResolvedStyle{"Impact", 100, 5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStyle(tt.style); got != tt.want {
				t.Errorf("ResolveStyle = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeASS_StyledHeader(t *testing.T) {
	style := &model.CaptionStyle{Font: model.FontArial, Size: model.SizeLarge, Position: model.PositionTop}
	doc := EncodeASS(nil, style)
	if !strings.Contains(doc, "Style: Default,Arial,120,") {
		t.Errorf("font/size not applied:\n%s", doc)
	}
	if !strings.Contains(doc, ",8,60,60,340,1") {
		t.Errorf("alignment/margin not applied:\n%s", doc)
	}
}

func TestEncodeSRT(t *testing.T) {
	cues := []model.CaptionCue{
		{Text: "hello world", StartTime: 0, EndTime: 1.5},
		{Text: "again", StartTime: 2, EndTime: 3.25},
	}
	doc := EncodeSRT(cues)
	want := "1\n00:00:00,000 --> 00:00:01,500\nhello world\n\n2\n00:00:02,000 --> 00:00:03,250\nagain\n\n"
	if doc != want {
		t.Errorf("EncodeSRT = %q, want %q", doc, want)
	}
}
