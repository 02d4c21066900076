package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// PythonConfig configures the external OCR process invocation.
type PythonConfig struct {
	// Python is the interpreter binary, e.g. "python" or "python3".
	Python string
	// Script is the path of the OCR script.
	Script string
	// Timeout bounds one extraction attempt; on expiry the process is killed
	// and the attempt reported as an extraction failure.
	Timeout time.Duration
}

// PythonExtractor spawns the OCR script once per file and parses the JSON
// object it prints on stdout.
type PythonExtractor struct {
	config PythonConfig
	logger *log.Logger
}

// NewPythonExtractor creates an extractor backed by the external Python script.
func NewPythonExtractor(config PythonConfig, logger *log.Logger) *PythonExtractor {
	if config.Python == "" {
		config.Python = "python"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	return &PythonExtractor{
		config: config,
		logger: logger,
	}
}

// Extract runs the script with (filePath, mimeType) as positional arguments
// and waits for it to exit. All failures come back inside the Result.
func (e *PythonExtractor) Extract(ctx context.Context, filePath, mimeType string) Result {
	if _, err := os.Stat(filePath); err != nil {
		return failure(FailureFileNotFound, fmt.Sprintf("file not found: %s", filePath))
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.config.Python, e.config.Script, filePath, mimeType)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Printf("Starting OCR process for: %s (%s)", filePath, mimeType)

	if err := cmd.Start(); err != nil {
		e.logger.Printf("Failed to start OCR process: %v", err)
		return failure(FailureProcessSpawn, fmt.Sprintf("failed to start OCR process: %v", err))
	}

	err := cmd.Wait()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.logger.Printf("OCR process timed out after %v for %s", e.config.Timeout, filePath)
		return failure(FailureExtraction, fmt.Sprintf("OCR process timed out after %v", e.config.Timeout))
	}
	if err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		e.logger.Printf("OCR process failed: %s", diagnostic)
		return failure(FailureExtraction, fmt.Sprintf("OCR process failed: %s", diagnostic))
	}

	raw := bytes.TrimSpace(stdout.Bytes())

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		// Exit 0 with unparseable output is a contract violation; the raw
		// output is retained in the error field for diagnosis.
		e.logger.Printf("Failed to parse OCR output: %v", err)
		return failure(FailureMalformedOutput,
			fmt.Sprintf("failed to parse OCR output: %v; raw output: %s", err, truncate(string(raw), 512)))
	}

	if !result.Success {
		result.Kind = FailureExtraction
		if result.Error == "" {
			result.Error = "extraction failed"
		}
	}
	return result
}

func failure(kind FailureKind, message string) Result {
	return Result{
		Success: false,
		Error:   message,
		Chunks:  []RawChunk{},
		Kind:    kind,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
