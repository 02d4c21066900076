package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"legalscan/internal/extractor"
	"legalscan/internal/models"
	"legalscan/internal/repositories"
	"legalscan/internal/storage"
	"legalscan/internal/textchunk"
)

// UploadConfig carries the orchestrator's validation and chunking settings.
type UploadConfig struct {
	TempDir           string
	MaxFileSizeBytes  int64
	AllowedMimeTypes  []string
	ChunkWindowWords  int
	ChunkOverlapWords int
}

// FileUpload is one incoming file as received from the HTTP layer.
type FileUpload struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// FileResult is the per-file outcome of an upload. Rejected marks files that
// failed validation before any processing happened; those never get a record,
// and the single-upload endpoint reports them as client errors.
type FileResult struct {
	FileID        string           `json:"fileId,omitempty"`
	Filename      string           `json:"filename"`
	Success       bool             `json:"success"`
	Rejected      bool             `json:"-"`
	FileType      string           `json:"fileType,omitempty"`
	FileSize      int64            `json:"fileSize,omitempty"`
	StorageURL    string           `json:"storageUrl,omitempty"`
	ExtractedText string           `json:"extractedText"`
	TextStats     models.TextStats `json:"textStats"`
	Chunks        []models.Chunk   `json:"chunks"`
	Error         string           `json:"error,omitempty"`
}

// BatchResult aggregates a multi-file upload. Per-file failures never abort
// the batch; the caller decides how to react to partial success.
type BatchResult struct {
	TotalFiles      int          `json:"totalFiles"`
	SuccessfulFiles int          `json:"successfulFiles"`
	FailedFiles     int          `json:"failedFiles"`
	Results         []FileResult `json:"results"`
}

// UploadService drives each uploaded file through validation, extraction,
// chunking, the best-effort object-storage mirror and persistence.
type UploadService struct {
	extractor extractor.Extractor
	repo      repositories.DocumentRepository
	objects   storage.ObjectStorage // nil disables mirroring
	config    UploadConfig
	logger    *log.Logger
}

// NewUploadService creates a new upload orchestrator
func NewUploadService(
	ext extractor.Extractor,
	repo repositories.DocumentRepository,
	objects storage.ObjectStorage,
	config UploadConfig,
	logger *log.Logger,
) *UploadService {
	if config.ChunkWindowWords <= 0 {
		config.ChunkWindowWords = textchunk.DefaultWindowWords
	}
	if config.ChunkOverlapWords < 0 || config.ChunkOverlapWords >= config.ChunkWindowWords {
		config.ChunkOverlapWords = textchunk.DefaultOverlapWords
	}
	return &UploadService{
		extractor: ext,
		repo:      repo,
		objects:   objects,
		config:    config,
		logger:    logger,
	}
}

// ProcessSingle processes one uploaded file. The returned error is non-nil
// only when the durable record could not be persisted; every other failure
// is reported inside the FileResult.
func (s *UploadService) ProcessSingle(ctx context.Context, ownerID string, up FileUpload) (*FileResult, error) {
	return s.processFile(ctx, ownerID, up)
}

// ProcessBatch processes files sequentially, preserving input order in the
// result list. Store failures are folded into the per-file results here;
// the batch always completes.
func (s *UploadService) ProcessBatch(ctx context.Context, ownerID string, uploads []FileUpload) (*BatchResult, error) {
	batch := &BatchResult{
		TotalFiles: len(uploads),
		Results:    make([]FileResult, 0, len(uploads)),
	}

	for _, up := range uploads {
		result, err := s.processFile(ctx, ownerID, up)
		if err != nil {
			s.logger.Printf("Failed to store result for %s: %v", up.Filename, err)
			result = &FileResult{
				Filename: up.Filename,
				Success:  false,
				Error:    "failed to store processing result",
			}
		}
		if result.Success {
			batch.SuccessfulFiles++
		} else {
			batch.FailedFiles++
		}
		batch.Results = append(batch.Results, *result)
	}

	return batch, nil
}

// GetResult returns the full stored record, scoped to its owner.
func (s *UploadService) GetResult(ctx context.Context, fileID, ownerID string) (*models.ProcessedDocument, error) {
	return s.repo.Get(ctx, fileID, ownerID)
}

// GetChunks serves one page of a document's stored chunks. Defaults are
// page=1 and limit=10; reading has no side effects on the record.
func (s *UploadService) GetChunks(ctx context.Context, fileID, ownerID string, page, limit int) (*repositories.ChunkPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.repo.GetChunkPage(ctx, fileID, ownerID, page, limit)
}

// History returns one metadata-only page of the owner's records, newest first.
func (s *UploadService) History(ctx context.Context, ownerID string, page, limit int) (*repositories.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.repo.ListByOwner(ctx, ownerID, page, limit)
}

// processFile runs one file through the pipeline:
// validate -> temp save -> extract -> chunk -> mirror -> persist.
// The temporary file is removed on every exit path.
func (s *UploadService) processFile(ctx context.Context, ownerID string, up FileUpload) (*FileResult, error) {
	if !s.isAllowedType(up.MimeType) {
		s.logger.Printf("Rejected %s: unsupported type %s", up.Filename, up.MimeType)
		return &FileResult{
			Filename: up.Filename,
			Success:  false,
			Rejected: true,
			FileType: up.MimeType,
			FileSize: up.Size,
			Error:    "Unsupported file type. Please upload images (JPEG, PNG) or PDF files.",
		}, nil
	}
	if up.Size > s.config.MaxFileSizeBytes {
		s.logger.Printf("Rejected %s: size %d exceeds limit %d", up.Filename, up.Size, s.config.MaxFileSizeBytes)
		return &FileResult{
			Filename: up.Filename,
			Success:  false,
			Rejected: true,
			FileType: up.MimeType,
			FileSize: up.Size,
			Error:    fmt.Sprintf("File too large. Maximum size is %d bytes.", s.config.MaxFileSizeBytes),
		}, nil
	}

	// The file ID is assigned exactly once, before any persistence attempt,
	// so even a failed extraction leaves a traceable record.
	fileID := uuid.New().String()

	tempPath, err := s.saveTemp(fileID, up)
	if err != nil {
		s.logger.Printf("Failed to save temp file for %s: %v", up.Filename, err)
		return &FileResult{
			Filename: up.Filename,
			Success:  false,
			FileType: up.MimeType,
			FileSize: up.Size,
			Error:    "failed to save uploaded file",
		}, nil
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			s.logger.Printf("Failed to remove temp file %s: %v", tempPath, err)
		}
	}()

	s.logger.Printf("Starting OCR processing for: %s", up.Filename)
	ext := s.extractor.Extract(ctx, tempPath, up.MimeType)

	doc := &models.ProcessedDocument{
		FileID:       fileID,
		OwnerID:      ownerID,
		StoredName:   filepath.Base(tempPath),
		OriginalName: up.Filename,
		MimeType:     up.MimeType,
		SizeBytes:    up.Size,
	}

	if ext.Success && strings.TrimSpace(ext.Text) != "" {
		chunks, chunkErr := textchunk.Split(ext.Text, s.config.ChunkWindowWords, s.config.ChunkOverlapWords)
		if chunkErr != nil {
			doc.Status = models.StatusFailed
			doc.ErrorMessage = chunkErr.Error()
			doc.Chunks = nil
		} else {
			doc.ExtractedText = ext.Text
			doc.Chunks = chunks
			doc.Stats = textchunk.Stats(ext.Text, chunks)
			doc.Status = models.StatusCompleted

			if s.objects != nil {
				objectName := fileID + "_" + filepath.Base(up.Filename)
				url, upErr := s.objects.Upload(ctx, tempPath, objectName)
				if upErr != nil {
					// Best-effort: the text is already extracted, only the
					// mirror is missing.
					s.logger.Printf("Object storage upload failed for %s: %v", up.Filename, upErr)
				} else {
					doc.StorageURL = url
				}
			}
		}
	} else {
		msg := ext.Error
		if msg == "" {
			msg = "extraction produced no text"
		}
		doc.Status = models.StatusFailed
		doc.ErrorMessage = msg
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store result for %s: %w", up.Filename, err)
	}
	s.logger.Printf("OCR result saved with ID: %s (status: %s)", fileID, doc.Status)

	return &FileResult{
		FileID:        doc.FileID,
		Filename:      doc.OriginalName,
		Success:       doc.Status == models.StatusCompleted,
		FileType:      doc.MimeType,
		FileSize:      doc.SizeBytes,
		StorageURL:    doc.StorageURL,
		ExtractedText: doc.ExtractedText,
		TextStats:     doc.Stats,
		Chunks:        doc.Chunks,
		Error:         doc.ErrorMessage,
	}, nil
}

// saveTemp writes the upload to the shared temp directory under a name made
// unique by the file ID, so concurrent requests can never collide.
func (s *UploadService) saveTemp(fileID string, up FileUpload) (string, error) {
	if err := os.MkdirAll(s.config.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	tempPath := filepath.Join(s.config.TempDir, fileID+"_"+filepath.Base(up.Filename))
	out, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, up.Content); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	return tempPath, nil
}

func (s *UploadService) isAllowedType(mimeType string) bool {
	for _, t := range s.config.AllowedMimeTypes {
		if strings.EqualFold(t, mimeType) {
			return true
		}
	}
	return false
}
