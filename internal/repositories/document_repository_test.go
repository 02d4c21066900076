package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalscan/internal/models"
)

func makeChunks(n int) []models.Chunk {
	chunks := make([]models.Chunk, n)
	for i := range chunks {
		chunks[i] = models.Chunk{
			Index:   i,
			Content: fmt.Sprintf("chunk %d", i),
		}
	}
	return chunks
}

func TestPaginateChunks(t *testing.T) {
	chunks := makeChunks(25)

	tests := []struct {
		name        string
		page        int
		pageSize    int
		wantFirst   int
		wantLen     int
		wantHasMore bool
	}{
		{name: "first page", page: 1, pageSize: 10, wantFirst: 0, wantLen: 10, wantHasMore: true},
		{name: "middle page", page: 2, pageSize: 10, wantFirst: 10, wantLen: 10, wantHasMore: true},
		{name: "short last page", page: 3, pageSize: 10, wantFirst: 20, wantLen: 5, wantHasMore: false},
		{name: "page past the end", page: 4, pageSize: 10, wantLen: 0, wantHasMore: false},
		{name: "exact fit", page: 5, pageSize: 5, wantFirst: 20, wantLen: 5, wantHasMore: false},
		{name: "page below one clamps", page: 0, pageSize: 10, wantFirst: 0, wantLen: 10, wantHasMore: true},
		{name: "size below one clamps", page: 1, pageSize: 0, wantFirst: 0, wantLen: 1, wantHasMore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hasMore := paginateChunks(chunks, tt.page, tt.pageSize)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantHasMore, hasMore)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, got[0].Index)
			}
		})
	}
}

func TestPaginateChunks_EmptyList(t *testing.T) {
	got, hasMore := paginateChunks(nil, 1, 10)
	assert.Empty(t, got)
	assert.False(t, hasMore)
}

func TestRepositoryError_Unwrap(t *testing.T) {
	err := NewRepositoryError("get", "file-1", ErrNotFound, "")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "get")
	assert.Contains(t, err.Error(), "file-1")
}

func TestRepositoryError_MessageIncluded(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewRepositoryError("create", "file-2", inner, "failed to execute transaction")

	require.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "failed to execute transaction")
	assert.Contains(t, err.Error(), "connection refused")
}
