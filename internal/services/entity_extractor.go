package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	prose "github.com/jdkato/prose/v2"

	"legalscan/internal/repositories"
)

// Entity is one named entity aggregated across the document text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// EntityResult is the stored output of named-entity extraction.
type EntityResult struct {
	FileID      string    `json:"fileId"`
	Entities    []Entity  `json:"entities"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// EntityExtractor finds named entities (people, organizations, places) in
// extracted document text. It runs locally and needs no API key.
type EntityExtractor struct {
	repo   repositories.DocumentRepository
	logger *log.Logger
}

// NewEntityExtractor creates a new entity extractor
func NewEntityExtractor(repo repositories.DocumentRepository, logger *log.Logger) *EntityExtractor {
	return &EntityExtractor{
		repo:   repo,
		logger: logger,
	}
}

// Extract tokenizes the document text, aggregates its named entities by
// surface text and label, and persists the result under the record's
// "entities" extension.
func (e *EntityExtractor) Extract(ctx context.Context, fileID, ownerID string) (*EntityResult, error) {
	doc, err := e.repo.Get(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}
	if doc.ExtractedText == "" {
		return nil, ErrNoExtractedText
	}

	parsed, err := prose.NewDocument(doc.ExtractedText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document text: %w", err)
	}

	type key struct {
		text  string
		label string
	}
	counts := make(map[key]int)
	for _, ent := range parsed.Entities() {
		counts[key{text: ent.Text, label: ent.Label}]++
	}

	entities := make([]Entity, 0, len(counts))
	for k, n := range counts {
		entities = append(entities, Entity{Text: k.text, Label: k.label, Count: n})
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Count != entities[j].Count {
			return entities[i].Count > entities[j].Count
		}
		return entities[i].Text < entities[j].Text
	})

	result := &EntityResult{
		FileID:      fileID,
		Entities:    entities,
		GeneratedAt: time.Now(),
	}

	raw, err := json.Marshal(result)
	if err == nil {
		if err := e.repo.SetExtension(ctx, fileID, ownerID, "entities", raw); err != nil {
			e.logger.Printf("Failed to store entities extension for %s: %v", fileID, err)
		}
	}

	return result, nil
}
