package services

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"legalscan/internal/repositories"
)

func setupEntityExtractor(t *testing.T) (*EntityExtractor, *MockDocumentRepository) {
	t.Helper()
	mockRepo := new(MockDocumentRepository)
	return NewEntityExtractor(mockRepo, log.New(os.Stderr, "[TEST] ", log.LstdFlags)), mockRepo
}

func TestEntityExtract_Success(t *testing.T) {
	extractorSvc, mockRepo := setupEntityExtractor(t)
	ctx := context.Background()

	doc := completedTestDoc("file-1", "owner-1")
	doc.ExtractedText = "This agreement is between Microsoft and Barack Obama. Microsoft shall pay monthly."
	mockRepo.On("Get", ctx, "file-1", "owner-1").Return(doc, nil)
	mockRepo.On("SetExtension", ctx, "file-1", "owner-1", "entities", mock.AnythingOfType("json.RawMessage")).Return(nil)

	result, err := extractorSvc.Extract(ctx, "file-1", "owner-1")

	require.NoError(t, err)
	assert.Equal(t, "file-1", result.FileID)
	assert.False(t, result.GeneratedAt.IsZero())

	// Counts are sorted descending
	for i := 1; i < len(result.Entities); i++ {
		assert.GreaterOrEqual(t, result.Entities[i-1].Count, result.Entities[i].Count)
	}
	mockRepo.AssertExpectations(t)
}

func TestEntityExtract_NoText(t *testing.T) {
	extractorSvc, mockRepo := setupEntityExtractor(t)
	ctx := context.Background()

	doc := completedTestDoc("file-1", "owner-1")
	doc.ExtractedText = ""
	mockRepo.On("Get", ctx, "file-1", "owner-1").Return(doc, nil)

	_, err := extractorSvc.Extract(ctx, "file-1", "owner-1")
	assert.True(t, errors.Is(err, ErrNoExtractedText))
}

func TestEntityExtract_NotFound(t *testing.T) {
	extractorSvc, mockRepo := setupEntityExtractor(t)
	ctx := context.Background()

	mockRepo.On("Get", ctx, "missing", "owner-1").Return(nil, repositories.ErrNotFound)

	_, err := extractorSvc.Extract(ctx, "missing", "owner-1")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestEntityExtract_StoreFailureDoesNotLoseResult(t *testing.T) {
	extractorSvc, mockRepo := setupEntityExtractor(t)
	ctx := context.Background()

	doc := completedTestDoc("file-1", "owner-1")
	doc.ExtractedText = "Microsoft and Google signed the agreement."
	mockRepo.On("Get", ctx, "file-1", "owner-1").Return(doc, nil)
	mockRepo.On("SetExtension", ctx, "file-1", "owner-1", "entities", mock.Anything).Return(errors.New("redis down"))

	result, err := extractorSvc.Extract(ctx, "file-1", "owner-1")
	require.NoError(t, err)
	assert.NotNil(t, result)
}
