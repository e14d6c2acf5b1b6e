// Package chunk splits raw text into bounded-size passages ahead of
// embedding. Granularity is whitespace tokens, the same unit the prompt
// budget reasons in, so ingestion and query stay consistent.
package chunk

import (
	"errors"
	"strings"
)

// ErrInvalidLimit indicates a non-positive chunk limit, which is a caller
// contract violation.
var ErrInvalidLimit = errors.New("chunk: limit must be positive")

// Splitter produces fixed-window token chunks with optional overlap.
// A zero Splitter is not usable; construct with New.
type Splitter struct {
	limit   int
	overlap int
}

// New creates a splitter producing chunks of at most limit tokens. Overlap
// carries trailing tokens of one chunk into the next; zero overlap matches
// the straight fixed-window split.
func New(limit, overlap int) (*Splitter, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= limit {
		overlap = limit / 4
	}
	return &Splitter{limit: limit, overlap: overlap}, nil
}

// Split returns the ordered chunks of text. Empty or all-whitespace input
// yields zero chunks, never a single empty chunk. The final chunk may be
// shorter than the limit.
func (s *Splitter) Split(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := s.limit - s.overlap
	var chunks []string
	for i := 0; i < len(tokens); i += step {
		end := i + s.limit
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[i:end], " "))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

// Split is the one-shot form of Splitter.Split for the default
// non-overlapping window.
func Split(text string, limit int) ([]string, error) {
	s, err := New(limit, 0)
	if err != nil {
		return nil, err
	}
	return s.Split(text), nil
}

// CountTokens reports the number of whitespace tokens in text. Chunking and
// prompt budgeting both measure with this.
func CountTokens(text string) int {
	return len(strings.Fields(text))
}
