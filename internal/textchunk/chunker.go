// Package textchunk splits extracted text into overlapping word-windows.
package textchunk

import (
	"fmt"
	"strings"

	"legalscan/internal/models"
)

const (
	DefaultWindowWords  = 500
	DefaultOverlapWords = 50
)

// InvalidParameterError reports degenerate chunking parameters. These are
// programmer errors, not extraction failures.
type InvalidParameterError struct {
	Message string
}

func (e *InvalidParameterError) Error() string {
	return "invalid chunking parameter: " + e.Message
}

// Split cuts text into word windows of windowWords, each advancing by
// windowWords-overlapWords, so consecutive chunks share exactly overlapWords
// words. The last window may be shorter. Pure and deterministic.
func Split(text string, windowWords, overlapWords int) ([]models.Chunk, error) {
	if windowWords <= 0 {
		return nil, &InvalidParameterError{Message: fmt.Sprintf("window must be positive, got %d", windowWords)}
	}
	if overlapWords < 0 {
		return nil, &InvalidParameterError{Message: fmt.Sprintf("overlap must not be negative, got %d", overlapWords)}
	}
	if overlapWords >= windowWords {
		return nil, &InvalidParameterError{Message: fmt.Sprintf("overlap %d must be smaller than window %d", overlapWords, windowWords)}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, &InvalidParameterError{Message: "text contains no words"}
	}

	step := windowWords - overlapWords
	chunks := make([]models.Chunk, 0, (len(words)+step-1)/step)

	for start := 0; start < len(words); start += step {
		end := start + windowWords
		if end > len(words) {
			end = len(words)
		}
		content := strings.Join(words[start:end], " ")
		chunks = append(chunks, models.Chunk{
			Index:           len(chunks),
			Content:         content,
			StartWordOffset: start,
			WordCount:       end - start,
			CharLength:      len(content),
		})
		if end == len(words) {
			break
		}
	}

	return chunks, nil
}

// Stats derives the stored text statistics from the raw text and its chunks.
func Stats(text string, chunks []models.Chunk) models.TextStats {
	return models.TextStats{
		WordCount:      len(strings.Fields(text)),
		CharacterCount: len(text),
		ChunkCount:     len(chunks),
	}
}
