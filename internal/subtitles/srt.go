package subtitles

import (
	"fmt"
	"math"
	"strings"

	"recap-video-gen/internal/model"
)

// EncodeSRT serializes cues as an SRT document. ASS is the format the
// renderer burns in; SRT is kept for sidecar export.
func EncodeSRT(cues []model.CaptionCue) string {
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, formatSRTTime(c.StartTime), formatSRTTime(c.EndTime), c.Text)
	}
	return b.String()
}

// formatSRTTime renders seconds as HH:MM:SS,mmm.
func formatSRTTime(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := int(math.Mod(seconds, 60))
	millis := int(math.Mod(seconds, 1) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
