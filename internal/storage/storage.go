// Package storage mirrors uploaded files to durable object storage.
package storage

import "context"

// ObjectStorage uploads a local file and returns a durable URL. The upload
// service treats it as best-effort: a failed mirror is logged and the record
// keeps a null storage URL, it never aborts the pipeline.
type ObjectStorage interface {
	Upload(ctx context.Context, localPath, objectName string) (string, error)
}
