package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCompleted() *ProcessedDocument {
	return &ProcessedDocument{
		FileID:        "file-1",
		OwnerID:       "owner-1",
		OriginalName:  "contract.pdf",
		MimeType:      "application/pdf",
		SizeBytes:     1024,
		ExtractedText: "some extracted text",
		Stats:         TextStats{WordCount: 3, CharacterCount: 19, ChunkCount: 2},
		Chunks: []Chunk{
			{Index: 0, Content: "some extracted"},
			{Index: 1, Content: "extracted text"},
		},
		Status: StatusCompleted,
	}
}

func TestValidate_AcceptsCompletedDocument(t *testing.T) {
	assert.NoError(t, validCompleted().Validate())
}

func TestValidate_AcceptsFailedDocument(t *testing.T) {
	doc := &ProcessedDocument{
		FileID:       "file-1",
		OwnerID:      "owner-1",
		OriginalName: "blurry.png",
		MimeType:     "image/png",
		Status:       StatusFailed,
		ErrorMessage: "No text could be extracted",
	}
	assert.NoError(t, doc.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ProcessedDocument)
		wantField string
	}{
		{
			name:      "missing file ID",
			mutate:    func(d *ProcessedDocument) { d.FileID = "" },
			wantField: "fileId",
		},
		{
			name:      "missing owner",
			mutate:    func(d *ProcessedDocument) { d.OwnerID = "" },
			wantField: "userId",
		},
		{
			name:      "missing original name",
			mutate:    func(d *ProcessedDocument) { d.OriginalName = "" },
			wantField: "originalName",
		},
		{
			name:      "missing mime type",
			mutate:    func(d *ProcessedDocument) { d.MimeType = "" },
			wantField: "fileType",
		},
		{
			name:      "unknown status",
			mutate:    func(d *ProcessedDocument) { d.Status = "exploded" },
			wantField: "processingStatus",
		},
		{
			name:      "chunk count out of step",
			mutate:    func(d *ProcessedDocument) { d.Stats.ChunkCount = 7 },
			wantField: "textStats",
		},
		{
			name: "completed without chunks",
			mutate: func(d *ProcessedDocument) {
				d.Chunks = nil
				d.Stats.ChunkCount = 0
			},
			wantField: "chunks",
		},
		{
			name: "failed with chunks",
			mutate: func(d *ProcessedDocument) {
				d.Status = StatusFailed
				d.ErrorMessage = "broke"
			},
			wantField: "chunks",
		},
		{
			name: "failed without error message",
			mutate: func(d *ProcessedDocument) {
				d.Status = StatusFailed
				d.Chunks = nil
				d.Stats.ChunkCount = 0
			},
			wantField: "error",
		},
		{
			name: "non-contiguous chunk indexes",
			mutate: func(d *ProcessedDocument) {
				d.Chunks[1].Index = 5
			},
			wantField: "chunks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validCompleted()
			tt.mutate(doc)

			err := doc.Validate()
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestProcessingStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusProcessing.IsValid())
	assert.True(t, StatusCompleted.IsValid())
	assert.True(t, StatusFailed.IsValid())
	assert.False(t, ProcessingStatus("done").IsValid())
}

func TestToHistoryEntry_DropsHeavyFields(t *testing.T) {
	doc := validCompleted()
	entry := doc.ToHistoryEntry()

	assert.Equal(t, doc.FileID, entry.FileID)
	assert.Equal(t, doc.OriginalName, entry.OriginalName)
	assert.Equal(t, doc.Stats, entry.Stats)
	assert.Equal(t, doc.Status, entry.Status)
}
