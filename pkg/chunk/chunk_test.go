package chunk

import (
	"errors"
	"strings"
	"testing"
)

func TestSplit_Bound(t *testing.T) {
	words := make([]string, 100)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")

	chunks, err := Split(text, 30)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 4 {
		t.Errorf("expected 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := CountTokens(c); n > 30 {
			t.Errorf("chunk %d has %d tokens, limit is 30", i, n)
		}
	}
	// Final chunk may be shorter than the limit.
	if n := CountTokens(chunks[len(chunks)-1]); n != 10 {
		t.Errorf("expected final chunk of 10 tokens, got %d", n)
	}
}

func TestSplit_Lossless(t *testing.T) {
	text := "the quick brown fox\tjumps\n over the lazy dog"
	chunks, err := Split(text, 3)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	var got []string
	for _, c := range chunks {
		got = append(got, strings.Fields(c)...)
	}
	want := strings.Fields(text)

	if len(got) != len(want) {
		t.Fatalf("expected %d tokens after reassembly, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		chunks, err := Split(text, 10)
		if err != nil {
			t.Fatalf("Split(%q) failed: %v", text, err)
		}
		if len(chunks) != 0 {
			t.Errorf("Split(%q): expected no chunks, got %d", text, len(chunks))
		}
	}
}

func TestSplit_InvalidLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		if _, err := Split("some text", limit); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("Split with limit %d: expected ErrInvalidLimit, got %v", limit, err)
		}
	}
}

func TestSplitter_Overlap(t *testing.T) {
	s, err := New(4, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	chunks := s.Split("one two three four five six seven eight")
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != "one two three four" {
		t.Errorf("unexpected first chunk: %q", chunks[0])
	}
	// Second window starts two tokens back.
	if chunks[1] != "three four five six" {
		t.Errorf("unexpected second chunk: %q", chunks[1])
	}
}

func TestSplitter_SingleChunk(t *testing.T) {
	s, err := New(100, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chunks := s.Split("just a few words")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "just a few words" {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}
