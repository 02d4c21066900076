package routes

import (
	"github.com/gorilla/mux"

	"legalscan/internal/handlers"
)

// Handlers groups the route handlers for registration
type Handlers struct {
	Doc      *handlers.DocumentHandler
	Analysis *handlers.AnalysisHandler // nil when the LLM backend is not configured
}

// RegisterRoutes sets up all application routes. Everything under /api
// requires authentication; health and home stay public.
func RegisterRoutes(router *mux.Router, h *Handlers, auth mux.MiddlewareFunc) {
	// Health endpoints
	router.HandleFunc("/health", handlers.HealthCheckHandler).Methods("GET")

	// Main routes
	router.HandleFunc("/", handlers.HomeHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth)

	// OCR pipeline
	api.HandleFunc("/ocr/upload-single", h.Doc.UploadSingle).Methods("POST")
	api.HandleFunc("/ocr/upload-multiple", h.Doc.UploadMultiple).Methods("POST")
	api.HandleFunc("/ocr/result/{fileId}", h.Doc.GetResult).Methods("GET")
	api.HandleFunc("/ocr/chunks/{fileId}", h.Doc.GetChunks).Methods("GET")
	api.HandleFunc("/ocr/history", h.Doc.History).Methods("GET")

	// Document analysis. Entity extraction runs locally; the LLM-backed
	// endpoints are registered only when a backend is configured.
	if h.Analysis != nil {
		api.HandleFunc("/analysis/entities/{fileId}", h.Analysis.Entities).Methods("POST")
		if h.Analysis.HasLLM() {
			api.HandleFunc("/analysis/analyze/{fileId}", h.Analysis.Analyze).Methods("POST")
			api.HandleFunc("/analysis/summarize/{fileId}", h.Analysis.Summarize).Methods("POST")
			api.HandleFunc("/analysis/chat/{fileId}", h.Analysis.Chat).Methods("POST")
		}
	}
}
