package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"legalscan/internal/middleware"
	"legalscan/internal/models"
	"legalscan/internal/repositories"
	"legalscan/internal/services"
)

const (
	singleUploadChunkPreview = 5
	batchUploadChunkPreview  = 3
)

// DocumentService is the subset of the upload service the handler needs.
type DocumentService interface {
	ProcessSingle(ctx context.Context, ownerID string, up services.FileUpload) (*services.FileResult, error)
	ProcessBatch(ctx context.Context, ownerID string, uploads []services.FileUpload) (*services.BatchResult, error)
	GetResult(ctx context.Context, fileID, ownerID string) (*models.ProcessedDocument, error)
	GetChunks(ctx context.Context, fileID, ownerID string, page, limit int) (*repositories.ChunkPage, error)
	History(ctx context.Context, ownerID string, page, limit int) (*repositories.HistoryPage, error)
}

// DocumentHandler handles HTTP requests for the OCR pipeline
type DocumentHandler struct {
	docService     DocumentService
	maxUploadBytes int64
	maxBatchFiles  int
	logger         *log.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService DocumentService, maxUploadBytes int64, maxBatchFiles int, logger *log.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		maxUploadBytes: maxUploadBytes,
		maxBatchFiles:  maxBatchFiles,
		logger:         logger,
	}
}

// UploadSingle handles single file upload requests
// @Summary Upload a single file for OCR
// @Description Upload one image or PDF, extract its text and store the result
// @Tags ocr
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image or PDF file"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/ocr/upload-single [post]
func (h *DocumentHandler) UploadSingle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.logger.Printf("Single upload request from %s", r.RemoteAddr)

	// Bound the request body itself, with headroom for the multipart framing;
	// ParseMultipartForm's argument is only the in-memory threshold
	maxBody := h.maxUploadBytes + (1 << 20)
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil {
		h.logger.Printf("Failed to parse form: %v", err)
		h.sendError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	result, err := h.docService.ProcessSingle(r.Context(), ownerID, services.FileUpload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		h.logger.Printf("Upload failed: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to store processing result")
		return
	}

	// Validation rejections are client errors, not processing outcomes
	if result.Rejected {
		h.sendError(w, http.StatusBadRequest, result.Error)
		return
	}

	message := "File processed successfully"
	if !result.Success {
		message = "File processing failed"
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: result.Success,
		Message: message,
		Data:    previewResult(*result, singleUploadChunkPreview),
	})
}

// UploadMultiple handles batch upload requests
// @Summary Upload multiple files for OCR
// @Description Upload up to 10 files; each is processed independently
// @Tags ocr
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Image or PDF files"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/ocr/upload-multiple [post]
func (h *DocumentHandler) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.logger.Printf("Batch upload request from %s", r.RemoteAddr)

	maxForm := h.maxUploadBytes*int64(h.maxBatchFiles) + (1 << 20)
	r.Body = http.MaxBytesReader(w, r.Body, maxForm)
	if err := r.ParseMultipartForm(maxForm); err != nil {
		h.logger.Printf("Failed to parse form: %v", err)
		h.sendError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) == 0 {
		h.sendError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(headers) > h.maxBatchFiles {
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("Too many files. Maximum is %d files per upload.", h.maxBatchFiles))
		return
	}

	uploads := make([]services.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.logger.Printf("Failed to open uploaded file %s: %v", fh.Filename, err)
			h.sendError(w, http.StatusBadRequest, "Failed to read uploaded files")
			return
		}
		defer f.Close()
		uploads = append(uploads, services.FileUpload{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Content:  f,
		})
	}

	batch, err := h.docService.ProcessBatch(r.Context(), ownerID, uploads)
	if err != nil {
		h.logger.Printf("Batch upload failed: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to process files")
		return
	}

	preview := *batch
	preview.Results = make([]services.FileResult, len(batch.Results))
	for i, res := range batch.Results {
		preview.Results[i] = previewResult(res, batchUploadChunkPreview)
	}

	// The batch itself succeeded as long as any file did; per-file failures
	// live in the results list.
	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: batch.SuccessfulFiles > 0,
		Message: fmt.Sprintf("Processed %d/%d files successfully", batch.SuccessfulFiles, batch.TotalFiles),
		Data:    preview,
	})
}

// GetResult handles requests for a stored OCR result
// @Summary Get OCR result
// @Description Get the full stored record for a processed file
// @Tags ocr
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/ocr/result/{fileId} [get]
func (h *DocumentHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	fileID := mux.Vars(r)["fileId"]
	h.logger.Printf("Get result: %s", fileID)

	doc, err := h.docService.GetResult(r.Context(), fileID, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.sendError(w, http.StatusNotFound, "OCR result not found")
			return
		}
		h.logger.Printf("Failed to get result: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to retrieve OCR result")
		return
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "OCR result retrieved successfully",
		Data:    doc,
	})
}

// GetChunks handles paginated chunk requests
// @Summary Get text chunks
// @Description Get one page of a processed file's text chunks
// @Tags ocr
// @Produce json
// @Param fileId path string true "File ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Chunks per page" default(10)
// @Success 200 {object} APIResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/ocr/chunks/{fileId} [get]
func (h *DocumentHandler) GetChunks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	fileID := mux.Vars(r)["fileId"]
	page := h.getIntQueryParam(r, "page", 1)
	limit := h.getIntQueryParam(r, "limit", 10)

	h.logger.Printf("Get chunks: %s page=%d limit=%d", fileID, page, limit)

	chunkPage, err := h.docService.GetChunks(r.Context(), fileID, ownerID, page, limit)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.sendError(w, http.StatusNotFound, "OCR result not found")
			return
		}
		h.logger.Printf("Failed to get chunks: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to retrieve chunks")
		return
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Chunks retrieved successfully",
		Data:    chunkPage,
	})
}

// History handles processing history requests
// @Summary Get processing history
// @Description Get a metadata-only page of the caller's processed files, newest first
// @Tags ocr
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Entries per page" default(10)
// @Success 200 {object} APIResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/ocr/history [get]
func (h *DocumentHandler) History(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page := h.getIntQueryParam(r, "page", 1)
	limit := h.getIntQueryParam(r, "limit", 10)

	h.logger.Printf("History request: owner=%s page=%d limit=%d", ownerID, page, limit)

	history, err := h.docService.History(r.Context(), ownerID, page, limit)
	if err != nil {
		h.logger.Printf("Failed to get history: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "History retrieved successfully",
		Data:    history,
	})
}

// previewResult truncates the chunk list for upload responses. The full list
// stays in storage and is served by the chunks endpoint.
func previewResult(res services.FileResult, maxChunks int) services.FileResult {
	if len(res.Chunks) > maxChunks {
		res.Chunks = res.Chunks[:maxChunks]
	}
	return res
}

// Helper methods

func (h *DocumentHandler) getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func (h *DocumentHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *DocumentHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Success: false,
		Message: message,
	})
}

// Response types

// APIResponse is the envelope for successful responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for error responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
