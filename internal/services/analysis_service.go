package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"legalscan/internal/models"
	"legalscan/internal/repositories"
)

// ErrNoExtractedText is returned when an analysis operation targets a
// document whose extraction did not complete.
var ErrNoExtractedText = errors.New("document has no extracted text")

// TextGenerator produces a completion for a prompt. Implementations are
// expected to be safe for concurrent use.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator implements TextGenerator on the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed text generator
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  model,
	}, nil
}

// Generate sends the prompt and concatenates the text parts of the first
// candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(2048)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying API client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// AnalysisResult is a stored LLM analysis of a document.
type AnalysisResult struct {
	FileID       string    `json:"fileId"`
	DocumentType string    `json:"documentType,omitempty"`
	Analysis     string    `json:"analysis"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// SummaryResult is a stored document summary.
type SummaryResult struct {
	FileID      string    `json:"fileId"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ChatResult is a single question-and-answer exchange about a document.
type ChatResult struct {
	FileID   string `json:"fileId"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnalysisService runs LLM-backed features over completed documents and
// attaches the outputs to the stored record.
type AnalysisService struct {
	generator TextGenerator
	repo      repositories.DocumentRepository
	logger    *log.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(generator TextGenerator, repo repositories.DocumentRepository, logger *log.Logger) *AnalysisService {
	return &AnalysisService{
		generator: generator,
		repo:      repo,
		logger:    logger,
	}
}

// maxPromptChars bounds how much document text is sent per request.
const maxPromptChars = 30000

// AnalyzeDocument produces a structured legal analysis of the document and
// persists it under the record's "analysis" extension.
func (s *AnalysisService) AnalyzeDocument(ctx context.Context, fileID, ownerID, documentType string) (*AnalysisResult, error) {
	doc, err := s.loadCompleted(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	if documentType == "" {
		documentType = "legal document"
	}

	prompt := fmt.Sprintf(`You are a legal document analyst. Analyze the following %s and provide:
1. Document type and purpose
2. Key parties involved
3. Important dates and deadlines
4. Key obligations and rights
5. Potential risks or unusual clauses

Document text:
%s`, documentType, clampText(doc.ExtractedText, maxPromptChars))

	analysis, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		FileID:       fileID,
		DocumentType: documentType,
		Analysis:     analysis,
		GeneratedAt:  time.Now(),
	}
	s.saveExtension(ctx, fileID, ownerID, "analysis", result)
	return result, nil
}

// Summarize produces a plain-language summary and persists it under the
// record's "summary" extension.
func (s *AnalysisService) Summarize(ctx context.Context, fileID, ownerID string) (*SummaryResult, error) {
	doc, err := s.loadCompleted(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Summarize the following legal document in plain language.
Keep the summary concise and focus on what the document means for the parties involved.

Document text:
%s`, clampText(doc.ExtractedText, maxPromptChars))

	summary, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := &SummaryResult{
		FileID:      fileID,
		Summary:     summary,
		GeneratedAt: time.Now(),
	}
	s.saveExtension(ctx, fileID, ownerID, "summary", result)
	return result, nil
}

// Chat answers a free-form question about the document. Answers are not
// persisted.
func (s *AnalysisService) Chat(ctx context.Context, fileID, ownerID, question string) (*ChatResult, error) {
	doc, err := s.loadCompleted(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Answer the question below using only the document text.
If the document does not contain the answer, say so.

Document text:
%s

Question: %s`, clampText(doc.ExtractedText, maxPromptChars), question)

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &ChatResult{
		FileID:   fileID,
		Question: question,
		Answer:   answer,
	}, nil
}

// loadCompleted fetches the document and rejects records without text.
func (s *AnalysisService) loadCompleted(ctx context.Context, fileID, ownerID string) (*models.ProcessedDocument, error) {
	doc, err := s.repo.Get(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.StatusCompleted || strings.TrimSpace(doc.ExtractedText) == "" {
		return nil, ErrNoExtractedText
	}
	return doc, nil
}

// saveExtension persists the feature payload best-effort; the caller already
// holds the generated output, so a store failure only costs the cache.
func (s *AnalysisService) saveExtension(ctx context.Context, fileID, ownerID, name string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Printf("Failed to marshal %s extension for %s: %v", name, fileID, err)
		return
	}
	if err := s.repo.SetExtension(ctx, fileID, ownerID, name, raw); err != nil {
		s.logger.Printf("Failed to store %s extension for %s: %v", name, fileID, err)
	}
}

func clampText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}
