package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"legalscan/internal/middleware"
	"legalscan/internal/repositories"
	"legalscan/internal/services"
)

// Analyzer is the subset of the analysis service the handler needs.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, fileID, ownerID, documentType string) (*services.AnalysisResult, error)
	Summarize(ctx context.Context, fileID, ownerID string) (*services.SummaryResult, error)
	Chat(ctx context.Context, fileID, ownerID, question string) (*services.ChatResult, error)
}

// EntityFinder extracts named entities from a stored document.
type EntityFinder interface {
	Extract(ctx context.Context, fileID, ownerID string) (*services.EntityResult, error)
}

// AnalysisHandler handles HTTP requests for document analysis
type AnalysisHandler struct {
	analyzer AnalysisDeps
	logger   *log.Logger
}

// AnalysisDeps bundles the analysis-side services.
type AnalysisDeps struct {
	Analyzer Analyzer
	Entities EntityFinder
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(deps AnalysisDeps, logger *log.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: deps,
		logger:   logger,
	}
}

// HasLLM reports whether the LLM-backed endpoints can be served.
func (h *AnalysisHandler) HasLLM() bool {
	return h.analyzer.Analyzer != nil
}

type analyzeRequest struct {
	DocumentType string `json:"documentType"`
}

type chatRequest struct {
	Question string `json:"question"`
}

// Analyze handles document analysis requests
// @Summary Analyze a document
// @Description Run an LLM analysis over a processed document's extracted text
// @Tags analysis
// @Accept json
// @Produce json
// @Param fileId path string true "File ID"
// @Param request body analyzeRequest false "Analysis options"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/analysis/analyze/{fileId} [post]
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	fileID := mux.Vars(r)["fileId"]

	var req analyzeRequest
	if r.Body != nil {
		// Body is optional; a decode failure just means defaults
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	h.logger.Printf("Analyze request: %s", fileID)

	result, err := h.analyzer.Analyzer.AnalyzeDocument(r.Context(), fileID, ownerID, req.DocumentType)
	if err != nil {
		h.handleAnalysisError(w, fileID, err)
		return
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Document analyzed successfully",
		Data:    result,
	})
}

// Summarize handles document summary requests
// @Summary Summarize a document
// @Description Generate a plain-language summary of a processed document
// @Tags analysis
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/analysis/summarize/{fileId} [post]
func (h *AnalysisHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	fileID := mux.Vars(r)["fileId"]

	h.logger.Printf("Summarize request: %s", fileID)

	result, err := h.analyzer.Analyzer.Summarize(r.Context(), fileID, ownerID)
	if err != nil {
		h.handleAnalysisError(w, fileID, err)
		return
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Document summarized successfully",
		Data:    result,
	})
}

// Entities handles named-entity extraction requests
// @Summary Extract named entities
// @Description Find people, organizations and places in a processed document
// @Tags analysis
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/analysis/entities/{fileId} [post]
func (h *AnalysisHandler) Entities(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	fileID := mux.Vars(r)["fileId"]

	h.logger.Printf("Entities request: %s", fileID)

	result, err := h.analyzer.Entities.Extract(r.Context(), fileID, ownerID)
	if err != nil {
		h.handleAnalysisError(w, fileID, err)
		return
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Entities extracted successfully",
		Data:    result,
	})
}

// Chat handles question-answering requests
// @Summary Ask about a document
// @Description Answer a question using the document's extracted text
// @Tags analysis
// @Accept json
// @Produce json
// @Param fileId path string true "File ID"
// @Param request body chatRequest true "Question"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/analysis/chat/{fileId} [post]
func (h *AnalysisHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	fileID := mux.Vars(r)["fileId"]

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		h.sendError(w, http.StatusBadRequest, "Question is required")
		return
	}

	h.logger.Printf("Chat request: %s", fileID)

	result, err := h.analyzer.Analyzer.Chat(r.Context(), fileID, ownerID, req.Question)
	if err != nil {
		h.handleAnalysisError(w, fileID, err)
		return
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Question answered successfully",
		Data:    result,
	})
}

func (h *AnalysisHandler) handleAnalysisError(w http.ResponseWriter, fileID string, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		h.sendError(w, http.StatusNotFound, "OCR result not found")
	case errors.Is(err, services.ErrNoExtractedText):
		h.sendError(w, http.StatusBadRequest, "Document has no extracted text to analyze")
	default:
		h.logger.Printf("Analysis failed for %s: %v", fileID, err)
		h.sendError(w, http.StatusInternalServerError, "Analysis failed")
	}
}

func (h *AnalysisHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *AnalysisHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Success: false,
		Message: message,
	})
}
