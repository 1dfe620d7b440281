package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/0xwonj/dungeon-sub001/logging"
)

// JSONL appends events to a file as newline-delimited JSON.
type JSONL struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// NewJSONL opens (or creates) the file at path in append mode.
func NewJSONL(path string) (*JSONL, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sinks: open %s: %w", path, err)
	}
	return &JSONL{file: file, writer: bufio.NewWriter(file)}, nil
}

// Name implements logging.Sink.
func (j *JSONL) Name() string { return "jsonl" }

// Deliver implements logging.Sink.
func (j *JSONL) Deliver(_ context.Context, event logging.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("sinks: marshal event: %w", err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.writer.Write(payload); err != nil {
		return fmt.Errorf("sinks: write event: %w", err)
	}
	if err := j.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("sinks: write event: %w", err)
	}
	return nil
}

// Close implements logging.Sink.
func (j *JSONL) Close(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		j.file.Close()
		return fmt.Errorf("sinks: flush: %w", err)
	}
	if err := j.file.Close(); err != nil {
		return fmt.Errorf("sinks: close: %w", err)
	}
	return nil
}
