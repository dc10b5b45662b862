package repository

import (
	"context"
	"encoding/json"

	"github.com/kevin-biot/mcp-memory/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrWriteFailed marks durable-log write failures. A store operation
	// that hits this error has failed as a whole.
	ErrWriteFailed = goerr.New("durable log write failed")
)

// Entry is one persisted record as read back from the durable log.
// Raw keeps the serialized bytes for substring matching; Fields holds the
// decoded record for exact-match filtering.
type Entry struct {
	Name   string
	Raw    []byte
	Fields map[string]any
}

// Decode unmarshals the raw record into the given destination.
func (e *Entry) Decode(v any) error {
	if err := json.Unmarshal(e.Raw, v); err != nil {
		return goerr.Wrap(err, "failed to decode log entry", goerr.V("name", e.Name))
	}
	return nil
}

// Repository is the durable log: every accepted record is appended here
// before any indexing happens, so a record survives even when the
// similarity backend fails.
type Repository interface {
	// Append serializes the record and writes it as a new uniquely named
	// file. Whole-file creates only; a write either fully succeeds or the
	// record does not exist afterwards.
	Append(ctx context.Context, kind model.RecordKind, record any) (string, error)

	// ScanRecent returns up to n entries of the given kind, newest first.
	ScanRecent(ctx context.Context, kind model.RecordKind, n int) ([]*Entry, error)
}
