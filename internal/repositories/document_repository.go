package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"legalscan/internal/models"
)

// ErrNotFound is returned when a document does not exist or belongs to a
// different owner. The two cases are deliberately indistinguishable so a
// lookup cannot leak the existence of another account's documents.
var ErrNotFound = errors.New("document not found")

// ErrAlreadyExists is returned when a file ID is registered twice. File IDs
// are assigned exactly once, before the first persistence attempt, so this
// indicates a programmer error.
var ErrAlreadyExists = errors.New("document already exists")

// DocumentRepository is the persistence layer for processed documents.
// Every read is scoped by owner. Failed extraction attempts are stored too;
// the repository does not reject failed records.
type DocumentRepository interface {
	// Create persists a new record. The document's FileID must already be
	// assigned and is never regenerated.
	Create(ctx context.Context, doc *models.ProcessedDocument) error

	// Get returns the full record, or ErrNotFound if it does not exist or
	// is owned by someone else.
	Get(ctx context.Context, fileID, ownerID string) (*models.ProcessedDocument, error)

	// GetChunkPage returns one 1-indexed page of the stored chunk list.
	// Out-of-range pages yield an empty page with HasMore=false, not an error.
	GetChunkPage(ctx context.Context, fileID, ownerID string, page, pageSize int) (*ChunkPage, error)

	// ListByOwner returns a metadata-only page of the owner's records,
	// newest first.
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*HistoryPage, error)

	// SetExtension attaches an opaque feature payload to a record.
	SetExtension(ctx context.Context, fileID, ownerID, name string, payload json.RawMessage) error

	Ping(ctx context.Context) error
	Close() error
}

// ChunkPage is one page of a document's chunk list.
type ChunkPage struct {
	FileID       string         `json:"fileId"`
	OriginalName string         `json:"filename"`
	Page         int            `json:"page"`
	Limit        int            `json:"limit"`
	TotalChunks  int            `json:"totalChunks"`
	Chunks       []models.Chunk `json:"chunks"`
	HasMore      bool           `json:"hasMore"`
}

// Pagination describes the position of a history page within the full listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// HistoryPage is one page of an owner's processing history.
type HistoryPage struct {
	Results    []models.HistoryEntry `json:"results"`
	Pagination Pagination            `json:"pagination"`
}

// RepositoryError wraps a lower-level failure with the operation and document
// it occurred on.
type RepositoryError struct {
	Operation  string
	DocumentID string
	Err        error
	Message    string
}

func (e *RepositoryError) Error() string {
	prefix := "document repository " + e.Operation
	if e.DocumentID != "" {
		prefix += " (" + e.DocumentID + ")"
	}
	if e.Message != "" {
		prefix += ": " + e.Message
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a wrapped repository error.
func NewRepositoryError(operation, documentID string, err error, message string) *RepositoryError {
	return &RepositoryError{
		Operation:  operation,
		DocumentID: documentID,
		Err:        err,
		Message:    message,
	}
}

// paginateChunks slices the stored chunk list for a 1-indexed page. Pages
// beyond the end come back empty with hasMore=false.
func paginateChunks(chunks []models.Chunk, page, pageSize int) ([]models.Chunk, bool) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	start := (page - 1) * pageSize
	if start >= len(chunks) {
		return []models.Chunk{}, false
	}
	end := start + pageSize
	if end > len(chunks) {
		end = len(chunks)
	}
	return chunks[start:end], end < len(chunks)
}
