package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Chunk is a bounded slice of a document's text, tagged with its position
// within the source document.
type Chunk struct {
	Text        string // Chunk text content
	Source      string // Document name the chunk came from
	Index       int    // 0-based rank within the source document, in text order
	TotalChunks int    // Final chunk count for the source document
}

// ID returns the chunk's stable identity used for indexing.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s_chunk_%d", c.Source, c.Index)
}

// Splitter splits text into overlapping windows using recursive
// priority-ordered separator splitting. Sizes are measured in runes.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New creates a Splitter. It fails fast on a malformed configuration:
// chunkSize must be positive and overlap must lie in [0, chunkSize).
func New(chunkSize, overlap int, separators []string) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be greater than 0, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", chunkSize, overlap)
	}
	if len(separators) == 0 {
		separators = []string{"\n\n", "\n", ". ", " ", ""}
	}
	seps := make([]string, len(separators))
	copy(seps, separators)
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: seps,
	}, nil
}

// Split splits text into chunks of at most the configured chunk size, with
// consecutive chunks sharing the configured overlap of trailing content.
// Empty input yields no chunks. A piece that no separator can break and that
// exceeds the chunk size is returned whole; with the empty-string fallback in
// the separator list that case cannot occur.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	pieces := s.fragment(text, 0)
	return s.merge(pieces)
}

// SplitDocument splits text and stamps each chunk with its source name,
// 0-based index and the total chunk count. The index and total are assigned
// only after the full split completes, since the total is not known
// chunk-by-chunk.
func (s *Splitter) SplitDocument(text, source string) []Chunk {
	texts := s.Split(text)
	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{
			Text:        t,
			Source:      source,
			Index:       i,
			TotalChunks: len(texts),
		}
	}
	return chunks
}

// fragment recursively breaks text into pieces no longer than the chunk size,
// trying separators in priority order. Separators are kept attached to the
// preceding piece so merging reconstructs the original text.
func (s *Splitter) fragment(text string, sepIdx int) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}
	if sepIdx >= len(s.separators) {
		// No separator left that can break this piece
		return []string{text}
	}

	sep := s.separators[sepIdx]
	if sep == "" {
		// Hard cut: single-rune pieces, merged back up by merge()
		runes := []rune(text)
		pieces := make([]string, len(runes))
		for i, r := range runes {
			pieces[i] = string(r)
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	for i := 0; i < len(parts)-1; i++ {
		parts[i] += sep
	}

	var pieces []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) > s.chunkSize {
			pieces = append(pieces, s.fragment(part, sepIdx+1)...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// merge greedily combines adjacent pieces into chunks of at most chunkSize
// runes. When a chunk is emitted, its trailing overlap runes seed the next
// chunk so consecutive chunks share boundary context.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var cur []rune
	newContent := false

	for _, p := range pieces {
		pr := []rune(p)
		if len(pr) == 0 {
			continue
		}

		if len(cur) > 0 && len(cur)+len(pr) > s.chunkSize {
			if newContent {
				chunks = append(chunks, string(cur))
			}

			// Seed the next chunk with the emitted chunk's trailing overlap
			if s.overlap > 0 && len(cur) > s.overlap {
				cur = append([]rune(nil), cur[len(cur)-s.overlap:]...)
			} else if s.overlap == 0 {
				cur = cur[:0]
			} else {
				cur = append([]rune(nil), cur...)
			}

			// Shrink the carried overlap from the front until the piece fits
			for len(cur) > 0 && len(cur)+len(pr) > s.chunkSize {
				cur = cur[1:]
			}
			newContent = false
		}

		cur = append(cur, pr...)
		newContent = true
	}

	if newContent && len(cur) > 0 {
		chunks = append(chunks, string(cur))
	}
	return chunks
}
