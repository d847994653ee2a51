package summarizer

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)
	wordRe     = regexp.MustCompile(`\pL+`)
)

// Extractive picks the highest scoring sentences by word frequency. It needs no model.
type Extractive struct {
	sentences  int
	inputWords int
}

func NewExtractive(sentences, inputWords int) *Extractive {
	if sentences <= 0 {
		sentences = 3
	}
	return &Extractive{sentences: sentences, inputWords: inputWords}
}

// Name implements Summarizer.
func (e *Extractive) Name() string { return BackendExtractive }

type scoredSentence struct {
	text  string
	idx   int
	score float64
}

// Summarize returns at most e.sentences sentences kept in source order.
func (e *Extractive) Summarize(_ context.Context, text string) string {
	text = TruncateWords(text, e.inputWords)
	if text == "" {
		return SummaryUnavailable
	}

	raw := splitSentences(text)
	if len(raw) <= e.sentences {
		return strings.Join(raw, " ")
	}

	freq := map[string]int{}
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(w)) > 2 {
			freq[w]++
		}
	}

	sents := make([]scoredSentence, 0, len(raw))
	for i, s := range raw {
		words := wordRe.FindAllString(strings.ToLower(s), -1)
		if len(words) == 0 {
			continue
		}
		total := 0
		for _, w := range words {
			total += freq[w]
		}
		// length normalised so long sentences do not win by size alone
		sents = append(sents, scoredSentence{text: s, idx: i, score: float64(total) / float64(len(words))})
	}

	sort.SliceStable(sents, func(i, j int) bool { return sents[i].score > sents[j].score })
	if len(sents) > e.sentences {
		sents = sents[:e.sentences]
	}
	sort.Slice(sents, func(i, j int) bool { return sents[i].idx < sents[j].idx })

	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.text)
	}
	return strings.Join(out, " ")
}

// splitSentences keeps terminal punctuation; a trailing fragment counts as a sentence.
func splitSentences(text string) []string {
	var out []string
	locs := sentenceRe.FindAllStringIndex(text, -1)
	end := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		end = loc[1]
	}
	if rest := strings.TrimSpace(text[end:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
