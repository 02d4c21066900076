package textchunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestSplit_SingleChunkWhenTextFitsWindow(t *testing.T) {
	chunks, err := Split(makeWords(100), 500, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].StartWordOffset)
	assert.Equal(t, 100, chunks[0].WordCount)
}

func TestSplit_ChunkCountFormula(t *testing.T) {
	// count = ceil(max(N-O, 1) / (W-O))
	tests := []struct {
		words   int
		window  int
		overlap int
		want    int
	}{
		{words: 500, window: 500, overlap: 50, want: 1},
		{words: 501, window: 500, overlap: 50, want: 2},
		{words: 1000, window: 500, overlap: 50, want: 3},
		{words: 1200, window: 500, overlap: 50, want: 3},
		{words: 1300, window: 500, overlap: 50, want: 3},
		{words: 1301, window: 500, overlap: 50, want: 3},
		{words: 1401, window: 500, overlap: 50, want: 4},
		{words: 1, window: 500, overlap: 50, want: 1},
		{words: 10, window: 4, overlap: 1, want: 3},
		{words: 11, window: 4, overlap: 1, want: 4},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("n%d_w%d_o%d", tt.words, tt.window, tt.overlap)
		t.Run(name, func(t *testing.T) {
			chunks, err := Split(makeWords(tt.words), tt.window, tt.overlap)
			require.NoError(t, err)
			assert.Len(t, chunks, tt.want)
		})
	}
}

func TestSplit_ConsecutiveChunksShareOverlap(t *testing.T) {
	chunks, err := Split(makeWords(1000), 500, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Content)
		cur := strings.Fields(chunks[i].Content)
		// Last 50 words of the previous chunk open the next one
		assert.Equal(t, prev[len(prev)-50:], cur[:50])
	}
}

func TestSplit_EveryWordCovered(t *testing.T) {
	text := makeWords(1234)
	chunks, err := Split(text, 100, 20)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, c := range chunks {
		for _, w := range strings.Fields(c.Content) {
			seen[w] = true
		}
	}
	for _, w := range strings.Fields(text) {
		assert.True(t, seen[w], "word %s missing from chunks", w)
	}
}

func TestSplit_IndexesContiguousAndOffsetsAdvanceByStep(t *testing.T) {
	chunks, err := Split(makeWords(1000), 500, 50)
	require.NoError(t, err)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, i*450, c.StartWordOffset)
		assert.Equal(t, len(c.Content), c.CharLength)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := makeWords(777)
	first, err := Split(text, 500, 50)
	require.NoError(t, err)
	second, err := Split(text, 500, 50)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplit_InvalidParameters(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		window  int
		overlap int
	}{
		{name: "zero window", text: "some text", window: 0, overlap: 0},
		{name: "negative overlap", text: "some text", window: 10, overlap: -1},
		{name: "overlap equals window", text: "some text", window: 10, overlap: 10},
		{name: "overlap exceeds window", text: "some text", window: 10, overlap: 20},
		{name: "empty text", text: "", window: 500, overlap: 50},
		{name: "whitespace only", text: "   \n\t  ", window: 500, overlap: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, tt.window, tt.overlap)
			assert.Nil(t, chunks)

			var paramErr *InvalidParameterError
			assert.ErrorAs(t, err, &paramErr)
		})
	}
}

func TestSplit_NoOverlap(t *testing.T) {
	chunks, err := Split(makeWords(10), 4, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, 4, chunks[0].WordCount)
	assert.Equal(t, 4, chunks[1].WordCount)
	assert.Equal(t, 2, chunks[2].WordCount)
}

func TestStats(t *testing.T) {
	text := makeWords(1000)
	chunks, err := Split(text, 500, 50)
	require.NoError(t, err)

	stats := Stats(text, chunks)
	assert.Equal(t, 1000, stats.WordCount)
	assert.Equal(t, len(text), stats.CharacterCount)
	assert.Equal(t, len(chunks), stats.ChunkCount)
}
