package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// FrequencySummarizer ranks sentences by normalized word frequency. It is
// the offline fallback when no chat model is reachable, so it has to cope
// with conversation transcripts as well as plain prose: newlines count as
// sentence boundaries and "Speaker:" prefixes are ignored for scoring.
type FrequencySummarizer struct {
	tokenPattern    *regexp.Regexp
	sentencePattern *regexp.Regexp
	speakerPattern  *regexp.Regexp
	stopwords       map[string]struct{}
}

func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern:    regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentencePattern: regexp.MustCompile(`(?m)(?U)([^.!?\n]+[.!?\n])`),
		speakerPattern:  regexp.MustCompile(`^\s*\S{1,24}:\s+`),
		stopwords:       defaultStopwords(),
	}
}

// Summarize returns up to maxSentences of the input, highest scoring
// first by frequency but kept in original order.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := s.sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranking := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		total := 0.0
		for _, tok := range toks {
			total += freq[tok]
		}
		// Length normalization keeps long turns from dominating.
		if n := float64(len(toks)); n > 0 {
			total /= math.Sqrt(n)
		}
		ranking[i] = scored{i, total}
	}
	sort.Slice(ranking, func(i, j int) bool { return ranking[i].score > ranking[j].score })
	if maxSentences > len(ranking) {
		maxSentences = len(ranking)
	}
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = ranking[i].idx
	}
	sort.Ints(selected)

	out := make([]string, 0, maxSentences)
	for _, idx := range selected {
		if sent := strings.TrimSpace(sentences[idx]); sent != "" {
			out = append(out, sent)
		}
	}
	return strings.Join(out, " "), nil
}

func (s *FrequencySummarizer) tokens(sentence string) []string {
	sentence = s.speakerPattern.ReplaceAllString(sentence, "")
	raw := s.tokenPattern.FindAllString(strings.ToLower(sentence), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
