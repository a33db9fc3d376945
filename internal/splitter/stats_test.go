package splitter

import (
	"reflect"
	"testing"
)

func TestStats_Empty(t *testing.T) {
	got := Stats(nil)
	if got.TotalChunks != 0 || got.TotalRunes != 0 {
		t.Errorf("Stats(nil) = %+v, want zero counts", got)
	}
	if len(got.Sources) != 0 {
		t.Errorf("Stats(nil) sources = %v, want empty", got.Sources)
	}
}

func TestStats(t *testing.T) {
	chunks := []Chunk{
		{Text: "aaaa", Source: "a.md", Index: 0, TotalChunks: 2},
		{Text: "bbbbbbbb", Source: "a.md", Index: 1, TotalChunks: 2},
		{Text: "cc", Source: "b.md", Index: 0, TotalChunks: 1},
	}

	got := Stats(chunks)

	if got.TotalChunks != 3 {
		t.Errorf("TotalChunks = %d, want 3", got.TotalChunks)
	}
	if got.TotalRunes != 14 {
		t.Errorf("TotalRunes = %d, want 14", got.TotalRunes)
	}
	if got.MinChunkSize != 2 {
		t.Errorf("MinChunkSize = %d, want 2", got.MinChunkSize)
	}
	if got.MaxChunkSize != 8 {
		t.Errorf("MaxChunkSize = %d, want 8", got.MaxChunkSize)
	}
	if got.AvgChunkSize != 4.67 {
		t.Errorf("AvgChunkSize = %v, want 4.67", got.AvgChunkSize)
	}
	if want := []string{"a.md", "b.md"}; !reflect.DeepEqual(got.Sources, want) {
		t.Errorf("Sources = %v, want %v", got.Sources, want)
	}
}

func TestStats_MultibyteRunes(t *testing.T) {
	chunks := []Chunk{
		{Text: "héllo", Source: "u.md", Index: 0, TotalChunks: 1},
	}

	got := Stats(chunks)
	if got.TotalRunes != 5 {
		t.Errorf("TotalRunes = %d, want 5 (rune count, not byte count)", got.TotalRunes)
	}
}
