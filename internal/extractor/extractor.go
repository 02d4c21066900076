// Package extractor turns an uploaded file into text by delegating to an
// external OCR process.
package extractor

import "context"

// FailureKind classifies why an extraction attempt failed.
type FailureKind string

const (
	// FailureNone means the extraction succeeded.
	FailureNone FailureKind = ""
	// FailureFileNotFound means the input file was missing before the
	// process was ever started.
	FailureFileNotFound FailureKind = "file_not_found"
	// FailureProcessSpawn means the external process could not be started
	// (missing interpreter, permissions).
	FailureProcessSpawn FailureKind = "process_spawn_failed"
	// FailureExtraction means the process ran and reported failure, exited
	// nonzero, or timed out.
	FailureExtraction FailureKind = "extraction_failed"
	// FailureMalformedOutput means the process exited 0 but its stdout could
	// not be parsed as the expected JSON shape.
	FailureMalformedOutput FailureKind = "malformed_output"
)

// RawChunk is the chunk shape the external process emits. The pipeline
// validates it as part of the output contract but stores its own word-window
// chunks; see the upload service.
type RawChunk struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
	Length  int    `json:"length"`
}

// Result is the uniform outcome of one extraction attempt. Field names match
// the JSON contract the external process prints on stdout.
type Result struct {
	Success    bool       `json:"success"`
	Text       string     `json:"text"`
	TextLength int        `json:"text_length"`
	WordCount  int        `json:"word_count"`
	ChunkCount int        `json:"chunk_count"`
	Chunks     []RawChunk `json:"chunks"`
	Error      string     `json:"error,omitempty"`

	Kind FailureKind `json:"-"`
}

// Extractor extracts text from a file on disk. Implementations never return
// a Go error: every failure mode is reported through the Result so callers
// can persist a failed record. One attempt per call; retry policy, if any,
// belongs to the caller.
type Extractor interface {
	Extract(ctx context.Context, filePath, mimeType string) Result
}
