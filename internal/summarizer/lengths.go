package summarizer

import "strings"

const (
	shortTextWords  = 10
	shortTextMaxLen = 20
	minMaxLen       = 30
	maxMaxLen       = 140
	minMinLen       = 10
)

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// TruncateWords keeps the first n words joined by single spaces. n <= 0 keeps everything.
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// TargetLength derives generation bounds from the word count of the full text:
// half the words clamped to [30, 140], or 20 for texts of ten words or fewer.
// The minimum is half the maximum but never below 10.
func TargetLength(text string) (maxLen, minLen int) {
	w := WordCount(text)
	if w > shortTextWords {
		maxLen = min(maxMaxLen, max(minMaxLen, w/2))
	} else {
		maxLen = shortTextMaxLen
	}
	return maxLen, max(minMinLen, maxLen/2)
}
