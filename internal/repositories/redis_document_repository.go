package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"legalscan/internal/models"
)

const (
	// Redis key prefixes
	resultKeyPrefix  = "ocrresult:"
	ownerIndexPrefix = "ocrresult:owner:"
)

// RedisDocumentRepository implements DocumentRepository on Redis. Each record
// is a JSON document under its own key; a per-owner sorted set scored by
// creation time backs the newest-first history listing.
type RedisDocumentRepository struct {
	client *redis.Client
}

// NewRedisDocumentRepository creates a Redis-backed document repository
func NewRedisDocumentRepository(client *redis.Client) *RedisDocumentRepository {
	return &RedisDocumentRepository{
		client: client,
	}
}

func resultKey(fileID string) string {
	return resultKeyPrefix + fileID
}

func ownerIndexKey(ownerID string) string {
	return ownerIndexPrefix + ownerID
}

// Create stores a new processed document
func (r *RedisDocumentRepository) Create(ctx context.Context, doc *models.ProcessedDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, resultKey(doc.FileID)).Result()
	if err != nil {
		return NewRepositoryError("create", doc.FileID, err, "")
	}
	if exists > 0 {
		return NewRepositoryError("create", doc.FileID, ErrAlreadyExists, "")
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return NewRepositoryError("create", doc.FileID, err, "failed to marshal document")
	}

	// Transaction keeps the record and the owner index in step
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, resultKey(doc.FileID), docJSON, 0)
	pipe.ZAdd(ctx, ownerIndexKey(doc.OwnerID), redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: doc.FileID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return NewRepositoryError("create", doc.FileID, err, "failed to execute transaction")
	}

	return nil
}

// Get retrieves a document by file ID, scoped to its owner. A record owned by
// a different account behaves exactly like a missing one.
func (r *RedisDocumentRepository) Get(ctx context.Context, fileID, ownerID string) (*models.ProcessedDocument, error) {
	docJSON, err := r.client.Get(ctx, resultKey(fileID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, NewRepositoryError("get", fileID, ErrNotFound, "")
	}
	if err != nil {
		return nil, NewRepositoryError("get", fileID, err, "")
	}

	var doc models.ProcessedDocument
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, NewRepositoryError("get", fileID, err, "failed to unmarshal document")
	}

	if doc.OwnerID != ownerID {
		return nil, NewRepositoryError("get", fileID, ErrNotFound, "")
	}

	return &doc, nil
}

// GetChunkPage returns one page of the stored chunk list
func (r *RedisDocumentRepository) GetChunkPage(ctx context.Context, fileID, ownerID string, page, pageSize int) (*ChunkPage, error) {
	doc, err := r.Get(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	chunks, hasMore := paginateChunks(doc.Chunks, page, pageSize)
	return &ChunkPage{
		FileID:       doc.FileID,
		OriginalName: doc.OriginalName,
		Page:         page,
		Limit:        pageSize,
		TotalChunks:  len(doc.Chunks),
		Chunks:       chunks,
		HasMore:      hasMore,
	}, nil
}

// ListByOwner returns a metadata-only page of the owner's records, newest first
func (r *RedisDocumentRepository) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	indexKey := ownerIndexKey(ownerID)

	total, err := r.client.ZCard(ctx, indexKey).Result()
	if err != nil {
		return nil, NewRepositoryError("list_by_owner", "", err, "")
	}

	start := int64((page - 1) * pageSize)
	stop := start + int64(pageSize) - 1

	fileIDs, err := r.client.ZRevRange(ctx, indexKey, start, stop).Result()
	if err != nil {
		return nil, NewRepositoryError("list_by_owner", "", err, "")
	}

	entries := make([]models.HistoryEntry, 0, len(fileIDs))
	if len(fileIDs) > 0 {
		pipe := r.client.Pipeline()
		cmds := make([]*redis.StringCmd, len(fileIDs))
		for i, id := range fileIDs {
			cmds[i] = pipe.Get(ctx, resultKey(id))
		}
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, NewRepositoryError("list_by_owner", "", err, "failed to execute batch get")
		}

		for i, cmd := range cmds {
			docJSON, err := cmd.Result()
			if errors.Is(err, redis.Nil) {
				// Index entry with no record; skip
				continue
			}
			if err != nil {
				return nil, NewRepositoryError("list_by_owner", fileIDs[i], err, "")
			}

			var doc models.ProcessedDocument
			if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
				return nil, NewRepositoryError("list_by_owner", fileIDs[i], err, "failed to unmarshal document")
			}
			entries = append(entries, doc.ToHistoryEntry())
		}
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &HistoryPage{
		Results: entries,
		Pagination: Pagination{
			Page:  page,
			Limit: pageSize,
			Total: int(total),
			Pages: pages,
		},
	}, nil
}

// setExtensionRetries bounds optimistic-lock retries on concurrent updates.
const setExtensionRetries = 5

// SetExtension attaches an opaque downstream payload to an existing record.
// The read-modify-write runs under WATCH so concurrent writers on the same
// record cannot drop each other's extensions.
func (r *RedisDocumentRepository) SetExtension(ctx context.Context, fileID, ownerID, name string, payload json.RawMessage) error {
	key := resultKey(fileID)

	txf := func(tx *redis.Tx) error {
		docJSON, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return NewRepositoryError("set_extension", fileID, ErrNotFound, "")
		}
		if err != nil {
			return NewRepositoryError("set_extension", fileID, err, "")
		}

		var doc models.ProcessedDocument
		if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
			return NewRepositoryError("set_extension", fileID, err, "failed to unmarshal document")
		}
		if doc.OwnerID != ownerID {
			return NewRepositoryError("set_extension", fileID, ErrNotFound, "")
		}

		if doc.Extensions == nil {
			doc.Extensions = make(map[string]json.RawMessage)
		}
		doc.Extensions[name] = payload
		doc.UpdatedAt = time.Now()

		out, err := json.Marshal(&doc)
		if err != nil {
			return NewRepositoryError("set_extension", fileID, err, "failed to marshal document")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}

	for i := 0; i < setExtensionRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			// Another writer touched the record; retry
			continue
		}
		return err
	}

	return NewRepositoryError("set_extension", fileID, redis.TxFailedErr, "too many concurrent updates")
}

// Ping checks if the Redis connection is alive
func (r *RedisDocumentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisDocumentRepository) Close() error {
	return r.client.Close()
}
