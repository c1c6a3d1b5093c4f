package captions

import (
	"strings"

	"github.com/samber/lo"
)

// Word-class tables for the chunking heuristic. This is a fixed lookup
// heuristic, not a parser; the tables are the behavior.
var (
	articles     = []string{"a", "an", "the"}
	prepositions = []string{
		"in", "on", "at", "by", "for", "with", "to", "from", "of", "about",
		"into", "through", "during", "before", "after", "above", "below",
		"between", "among",
	}
	conjunctions   = []string{"and", "but", "or", "so", "yet", "for", "nor"}
	auxiliaryVerbs = []string{
		"is", "are", "was", "were", "am", "be", "been", "have", "has", "had",
		"do", "does", "did", "will", "would", "could", "should", "might",
		"may", "can", "must",
	}
	pronouns = []string{
		"i", "you", "he", "she", "it", "we", "they", "me", "him", "her",
		"us", "them", "my", "your", "his", "its", "our", "their",
	}
	numbers = []string{
		"one", "two", "three", "four", "five", "six", "seven", "eight",
		"nine", "ten", "first", "second", "third",
	}
	quantifiers = []string{
		"some", "many", "few", "several", "all", "most", "both", "each",
		"every", "no", "any",
	}
	commonAdjectives = []string{
		"good", "bad", "big", "small", "new", "old", "long", "short",
		"high", "low", "hot", "cold", "fast", "slow", "easy", "hard",
		"light", "dark", "clean", "dirty",
	}
	impactfulWords = []string{
		"amazing", "incredible", "awesome", "fantastic", "wonderful",
		"terrible", "horrible", "beautiful", "perfect", "excellent",
	}

	twoWordPhrases = [][2]string{
		{"right", "now"}, {"right", "here"}, {"over", "there"},
		{"last", "night"}, {"next", "week"}, {"this", "morning"},
		{"every", "day"}, {"all", "day"}, {"so", "much"},
		{"very", "much"}, {"how", "much"}, {"too", "much"},
		{"let", "me"}, {"let", "us"}, {"let", "go"},
		{"come", "on"}, {"go", "ahead"}, {"look", "out"},
		{"watch", "out"}, {"hold", "on"}, {"wait", "up"},
	}
	threeWordPhrases = [][3]string{
		{"as", "well", "as"}, {"in", "order", "to"}, {"on", "the", "other"},
		{"at", "the", "same"}, {"for", "the", "first"}, {"in", "the", "end"},
		{"all", "of", "a"}, {"one", "of", "the"}, {"some", "of", "the"},
		{"most", "of", "the"}, {"none", "of", "the"},
	}
)

// chunkSize decides how many words starting at idx form the next cue.
// Grammatical units (article+noun, preposition+object, auxiliary+verb,
// pronoun+verb, fixed idioms) stay together; everything else defaults
// to 2-word chunks, except that long or impactful words stand alone,
// a word whose successor opens its own unit stands alone, and the
// final word of the script is never absorbed into a 3-word chunk.
func chunkSize(words []string, idx, remaining int) int {
	if remaining == 1 {
		return 1
	}
	if remaining == 2 {
		return 2
	}

	current := strings.ToLower(words[idx])
	next := ""
	if idx+1 < len(words) {
		next = strings.ToLower(words[idx+1])
	}
	third := ""
	if idx+2 < len(words) {
		third = strings.ToLower(words[idx+2])
	}

	// Article + noun: "the car", "a house".
	if lo.Contains(articles, current) {
		return 2
	}

	// Preposition + article + noun: "in the house". Trimmed to two
	// words when it would swallow the script's final word.
	if lo.Contains(prepositions, current) && lo.Contains(articles, next) {
		if remaining == 3 {
			return 2
		}
		return 3
	}

	// Preposition + object: "in school", "at work".
	if lo.Contains(prepositions, current) {
		return 2
	}

	// Auxiliary + main verb: "is running", "can go".
	if lo.Contains(auxiliaryVerbs, current) {
		return 2
	}

	// Pronoun + verb: "i am", "we go".
	if lo.Contains(pronouns, current) {
		return 2
	}

	// Conjunctions never stand alone.
	if lo.Contains(conjunctions, current) {
		return 2
	}

	for _, p := range twoWordPhrases {
		if current == p[0] && next == p[1] {
			return 2
		}
	}

	for _, p := range threeWordPhrases {
		if current == p[0] && next == p[1] && third == p[2] {
			if remaining == 3 {
				return 2
			}
			return 3
		}
	}

	if lo.Contains(numbers, current) || lo.Contains(quantifiers, current) {
		return 2
	}

	if lo.Contains(commonAdjectives, current) {
		return 2
	}

	// Long or emphatic words get their own cue.
	if len(current) > 8 || lo.Contains(impactfulWords, current) {
		return 1
	}

	// Leave the next word to open its own unit rather than absorbing
	// it into a default pair.
	if lo.Contains(articles, next) || lo.Contains(prepositions, next) ||
		lo.Contains(auxiliaryVerbs, next) || lo.Contains(pronouns, next) {
		return 1
	}

	return 2
}
