package extractor

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[TEST] ", log.LstdFlags)
}

// writeScript writes an executable shell script standing in for the OCR
// process, so the exit-code and stdout contract can be exercised without a
// Python installation.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ocr.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func writeInputFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0o644))
	return path
}

func newTestExtractor(script string, timeout time.Duration) *PythonExtractor {
	return NewPythonExtractor(PythonConfig{
		Python:  "/bin/sh",
		Script:  script,
		Timeout: timeout,
	}, testLogger())
}

func TestExtract_Success(t *testing.T) {
	script := writeScript(t, `echo '{"success":true,"text":"hello world from ocr","text_length":20,"word_count":4,"chunk_count":1,"chunks":[{"index":0,"content":"hello world from ocr","length":20}]}'`)
	ext := newTestExtractor(script, 5*time.Second)

	result := ext.Extract(context.Background(), writeInputFile(t), "image/png")

	assert.True(t, result.Success)
	assert.Equal(t, FailureNone, result.Kind)
	assert.Equal(t, "hello world from ocr", result.Text)
	assert.Equal(t, 4, result.WordCount)
	assert.Len(t, result.Chunks, 1)
}

func TestExtract_FileNotFound(t *testing.T) {
	script := writeScript(t, `echo '{"success":true}'`)
	ext := newTestExtractor(script, 5*time.Second)

	result := ext.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.png"), "image/png")

	assert.False(t, result.Success)
	assert.Equal(t, FailureFileNotFound, result.Kind)
	assert.Contains(t, result.Error, "file not found")
}

func TestExtract_ProcessSpawnFailed(t *testing.T) {
	ext := NewPythonExtractor(PythonConfig{
		Python:  "/nonexistent/interpreter",
		Script:  "ocr.py",
		Timeout: 5 * time.Second,
	}, testLogger())

	result := ext.Extract(context.Background(), writeInputFile(t), "image/png")

	assert.False(t, result.Success)
	assert.Equal(t, FailureProcessSpawn, result.Kind)
	assert.Contains(t, result.Error, "failed to start OCR process")
}

func TestExtract_NonZeroExitCarriesStderr(t *testing.T) {
	script := writeScript(t, "echo 'tesseract not installed' >&2\nexit 1")
	ext := newTestExtractor(script, 5*time.Second)

	result := ext.Extract(context.Background(), writeInputFile(t), "image/png")

	assert.False(t, result.Success)
	assert.Equal(t, FailureExtraction, result.Kind)
	assert.Contains(t, result.Error, "tesseract not installed")
}

func TestExtract_MalformedOutputRetainsRaw(t *testing.T) {
	script := writeScript(t, `echo 'Traceback (most recent call last): oops'`)
	ext := newTestExtractor(script, 5*time.Second)

	result := ext.Extract(context.Background(), writeInputFile(t), "image/png")

	assert.False(t, result.Success)
	assert.Equal(t, FailureMalformedOutput, result.Kind)
	assert.Contains(t, result.Error, "failed to parse OCR output")
	assert.Contains(t, result.Error, "Traceback")
}

func TestExtract_Timeout(t *testing.T) {
	script := writeScript(t, "sleep 5")
	ext := newTestExtractor(script, 100*time.Millisecond)

	start := time.Now()
	result := ext.Extract(context.Background(), writeInputFile(t), "image/png")

	assert.False(t, result.Success)
	assert.Equal(t, FailureExtraction, result.Kind)
	assert.Contains(t, result.Error, "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExtract_ReportedFailureMapsToExtraction(t *testing.T) {
	script := writeScript(t, `echo '{"success":false,"error":"No text could be extracted"}'`)
	ext := newTestExtractor(script, 5*time.Second)

	result := ext.Extract(context.Background(), writeInputFile(t), "application/pdf")

	assert.False(t, result.Success)
	assert.Equal(t, FailureExtraction, result.Kind)
	assert.Equal(t, "No text could be extracted", result.Error)
}

func TestExtract_ReportedFailureWithoutMessageGetsDefault(t *testing.T) {
	script := writeScript(t, `echo '{"success":false}'`)
	ext := newTestExtractor(script, 5*time.Second)

	result := ext.Extract(context.Background(), writeInputFile(t), "application/pdf")

	assert.False(t, result.Success)
	assert.Equal(t, "extraction failed", result.Error)
}
