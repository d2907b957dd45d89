package chunker

import (
	"strconv"
	"strings"

	"ragchat/internal/domain"
)

// defaultSeparators are tried in order, coarsest first.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", " "}

// RecursiveSplitter splits text into character chunks with overlap,
// preferring to break at paragraph, line, sentence and word boundaries
// in that order.
type RecursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &RecursiveSplitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

func (c *RecursiveSplitter) Chunk(document domain.Document) ([]domain.Chunk, error) {
	content := strings.TrimSpace(document.Content)
	if content == "" {
		return nil, nil
	}
	var chunks []domain.Chunk
	for _, text := range c.split(content, c.separators) {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Source:     document.Source,
			Text:       text,
			Index:      idx,
		})
	}
	return chunks, nil
}

func (c *RecursiveSplitter) split(text string, separators []string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}
	if len(separators) == 0 {
		return c.hardCut(text)
	}
	var units []string
	for _, piece := range splitAfter(text, separators[0]) {
		if len(piece) > c.chunkSize {
			units = append(units, c.split(piece, separators[1:])...)
		} else {
			units = append(units, piece)
		}
	}
	return c.merge(units)
}

// merge greedily packs units into chunks of at most chunkSize characters,
// seeding each new chunk with the overlap suffix of the previous one.
func (c *RecursiveSplitter) merge(units []string) []string {
	var chunks []string
	cur := ""
	for _, u := range units {
		if strings.TrimSpace(cur) != "" && len(cur)+len(u) > c.chunkSize {
			chunks = append(chunks, strings.TrimSpace(cur))
			seed := overlapSuffix(cur, c.chunkOverlap)
			if len(seed)+len(u) > c.chunkSize {
				seed = ""
			}
			cur = seed
		}
		cur += u
	}
	if strings.TrimSpace(cur) != "" {
		chunks = append(chunks, strings.TrimSpace(cur))
	}
	return chunks
}

// hardCut is the last resort for text with no usable separators: fixed
// windows advancing by chunkSize-chunkOverlap runes.
func (c *RecursiveSplitter) hardCut(text string) []string {
	runes := []rune(text)
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = c.chunkSize
	}
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func overlapSuffix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
