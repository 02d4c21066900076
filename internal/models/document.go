package models

import (
	"encoding/json"
	"time"
)

// ProcessingStatus represents the lifecycle state of a processed document.
// Transitions are monotonic: a record never moves back to pending.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// IsValid checks if the status is a known value
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

func (s ProcessingStatus) String() string {
	return string(s)
}

// TextStats holds derived statistics for the extracted text
type TextStats struct {
	WordCount      int `json:"wordCount"`
	CharacterCount int `json:"characterCount"`
	ChunkCount     int `json:"chunkCount"`
}

// Chunk is one overlapping word-window of the extracted text. Index is
// contiguous from 0 and ordering is significant.
type Chunk struct {
	Index           int    `json:"index"`
	Content         string `json:"content"`
	StartWordOffset int    `json:"startIndex"`
	WordCount       int    `json:"wordCount"`
	CharLength      int    `json:"length"`
}

// ProcessedDocument is the persisted record for one uploaded file's
// extraction outcome. Downstream features (analysis, summary, entities)
// attach their payloads to Extensions; the pipeline treats those as opaque
// blobs and round-trips them unchanged.
type ProcessedDocument struct {
	FileID       string `json:"fileId"`
	OwnerID      string `json:"userId"`
	StoredName   string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"fileType"`
	SizeBytes    int64  `json:"fileSize"`
	StorageURL   string `json:"storageUrl,omitempty"`

	ExtractedText string    `json:"extractedText"`
	Stats         TextStats `json:"textStats"`
	Chunks        []Chunk   `json:"chunks"`

	Status       ProcessingStatus `json:"processingStatus"`
	ErrorMessage string           `json:"error,omitempty"`

	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryEntry is the metadata-only projection served by the history listing.
type HistoryEntry struct {
	FileID       string           `json:"fileId"`
	OriginalName string           `json:"originalName"`
	MimeType     string           `json:"fileType"`
	SizeBytes    int64            `json:"fileSize"`
	Status       ProcessingStatus `json:"processingStatus"`
	Stats        TextStats        `json:"textStats"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// ToHistoryEntry projects the record down to listing metadata.
func (d *ProcessedDocument) ToHistoryEntry() HistoryEntry {
	return HistoryEntry{
		FileID:       d.FileID,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		SizeBytes:    d.SizeBytes,
		Status:       d.Status,
		Stats:        d.Stats,
		CreatedAt:    d.CreatedAt,
	}
}

// Validate checks the record's structural invariants before persistence.
func (d *ProcessedDocument) Validate() error {
	if d.FileID == "" {
		return &ValidationError{Field: "fileId", Message: "file ID is required"}
	}
	if d.OwnerID == "" {
		return &ValidationError{Field: "userId", Message: "owner ID is required"}
	}
	if d.OriginalName == "" {
		return &ValidationError{Field: "originalName", Message: "original name is required"}
	}
	if d.MimeType == "" {
		return &ValidationError{Field: "fileType", Message: "mime type is required"}
	}
	if !d.Status.IsValid() {
		return &ValidationError{Field: "processingStatus", Message: "unknown status: " + string(d.Status)}
	}
	if d.Stats.ChunkCount != len(d.Chunks) {
		return &ValidationError{Field: "textStats", Message: "chunkCount does not match stored chunks"}
	}
	if d.Status == StatusCompleted && len(d.Chunks) == 0 {
		return &ValidationError{Field: "chunks", Message: "completed document must have chunks"}
	}
	if d.Status != StatusCompleted && len(d.Chunks) != 0 {
		return &ValidationError{Field: "chunks", Message: "only completed documents may carry chunks"}
	}
	if d.Status == StatusFailed && d.ErrorMessage == "" {
		return &ValidationError{Field: "error", Message: "failed document must carry an error message"}
	}
	for i, c := range d.Chunks {
		if c.Index != i {
			return &ValidationError{Field: "chunks", Message: "chunk indexes must be contiguous from 0"}
		}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
