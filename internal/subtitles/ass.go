package subtitles

import (
	"fmt"
	"math"
	"strings"

	"recap-video-gen/internal/model"
)

// Canvas declared in the script header. Must match the render target
// exactly or cue positioning is wrong.
const (
	PlayResX = 1080
	PlayResY = 1920
)

// Fixed legibility constants. Not user-configurable: captions have to
// survive arbitrary video backgrounds.
const (
	styleBold    = 4
	styleOutline = 4
	styleShadow  = 1
	marginLR     = 60
)

const (
	defaultFontName  = "Impact"
	defaultFontSize  = 100
	defaultAlignment = 5 // middle center
	defaultMarginV   = 0
)

var fontNames = map[model.CaptionFont]string{
	model.FontCalibri: "Calibri",
	model.FontArial:   "Arial",
	model.FontImpact:  "Impact",
}

var fontSizes = map[model.CaptionSize]int{
	model.SizeSmall:  80,
	model.SizeMedium: 100,
	model.SizeLarge:  120,
}

// ASS numpad alignment codes, all center column.
var alignments = map[model.CaptionPosition]int{
	model.PositionTop:    8,
	model.PositionMiddle: 5,
	model.PositionBottom: 2,
}

// Vertical margin keeps top/bottom captions between the edge and the
// center of the 1920px canvas.
var verticalMargins = map[model.CaptionPosition]int{
	model.PositionTop:    340,
	model.PositionMiddle: 0,
	model.PositionBottom: 340,
}

// ResolvedStyle is the concrete parameter set a CaptionStyle maps to.
type ResolvedStyle struct {
	FontName  string
	FontSize  int
	Alignment int
	MarginV   int
}

// ResolveStyle applies the lookup tables; nil and zero fields fall
// back to the defaults.
func ResolveStyle(style *model.CaptionStyle) ResolvedStyle {
	r := ResolvedStyle{
		FontName:  defaultFontName,
		FontSize:  defaultFontSize,
		Alignment: defaultAlignment,
		MarginV:   defaultMarginV,
	}
	if style == nil {
		return r
	}
	if name, ok := fontNames[style.Font]; ok {
		r.FontName = name
	}
	if size, ok := fontSizes[style.Size]; ok {
		r.FontSize = size
	}
	if align, ok := alignments[style.Position]; ok {
		r.Alignment = align
		r.MarginV = verticalMargins[style.Position]
	}
	return r
}

// EncodeASS serializes cues into an ASS document with one dialogue
// event per cue, in input order. Overlap validation is the timeline
// builder's job, not the encoder's.
func EncodeASS(cues []model.CaptionCue, style *model.CaptionStyle) string {
	s := ResolveStyle(style)

	var b strings.Builder
	fmt.Fprintf(&b, `[Script Info]
Title: Generated Subtitles
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,&Hffffff,&Hffffff,&H000000,&H000000,%d,0,0,0,100,100,0,0,1,%d,%d,%d,%d,%d,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`, PlayResX, PlayResY, s.FontName, s.FontSize, styleBold, styleOutline, styleShadow, s.Alignment, marginLR, marginLR, s.MarginV)

	for _, c := range cues {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(c.StartTime), formatASSTime(c.EndTime), c.Text)
	}

	return b.String()
}

// formatASSTime renders seconds as H:MM:SS.CC (centisecond precision,
// hours unpadded).
func formatASSTime(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := int(math.Mod(seconds, 60))
	centis := int(math.Mod(seconds, 1) * 100)
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}
