package voice

import (
	"strings"
	"unicode"

	"recap-video-gen/internal/model"
)

// WordsFromCharacters converts character-level alignment (one entry
// per character of text, in order) into word-level timestamps: a word
// starts at its first character's start and ends at its last
// character's end. Words are delimited by whitespace.
func WordsFromCharacters(text string, chars []model.CharacterTimestamp) []model.WordTimestamp {
	var words []model.WordTimestamp
	runes := []rune(text)

	current := strings.Builder{}
	wordStart := -1

	flush := func(endIdx int) {
		word := strings.TrimSpace(current.String())
		if word != "" && wordStart >= 0 {
			var start, end float64
			if wordStart < len(chars) {
				start = chars[wordStart].StartTime
			}
			if endIdx >= 0 && endIdx < len(chars) {
				end = chars[endIdx].EndTime
			}
			words = append(words, model.WordTimestamp{Word: word, StartTime: start, EndTime: end})
		}
		current.Reset()
		wordStart = -1
	}

	for i, r := range runes {
		if unicode.IsSpace(r) {
			flush(i - 1)
			continue
		}
		if current.Len() == 0 {
			wordStart = i
		}
		current.WriteRune(r)
	}
	flush(len(runes) - 1)

	return words
}
