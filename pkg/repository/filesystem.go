package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kevin-biot/mcp-memory/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// filesystemRepo implements Repository on a local directory. Each record
// becomes one pretty-printed JSON file named <kind>_<epochMillis>.json.
// This layout is the only persisted state of the store and the fallback
// reader depends on it; do not change it.
type filesystemRepo struct {
	dir string
}

// NewFilesystem creates a durable log rooted at dir. The directory is
// created if absent.
func NewFilesystem(dir string) (Repository, error) {
	if dir == "" {
		return nil, goerr.New("memory directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create memory directory", goerr.V("dir", dir))
	}
	return &filesystemRepo{dir: dir}, nil
}

func (r *filesystemRepo) Append(ctx context.Context, kind model.RecordKind, record any) (string, error) {
	if err := kind.Validate(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", goerr.Wrap(ErrWriteFailed, "failed to serialize record", goerr.V("kind", kind))
	}

	// Named by write time, not record ID: differently typed records can
	// share a primary key. Same-millisecond writes overwrite, which the
	// contract tolerates (last write wins).
	name := fmt.Sprintf("%s_%d.json", kind, time.Now().UnixMilli())
	path := filepath.Join(r.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", goerr.Wrap(ErrWriteFailed, "failed to write log file",
			goerr.V("path", path), goerr.V("cause", err.Error()))
	}

	return path, nil
}

func (r *filesystemRepo) ScanRecent(ctx context.Context, kind model.RecordKind, n int) ([]*Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	dirents, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memory directory", goerr.V("dir", r.dir))
	}

	prefix := string(kind) + "_"
	var names []string
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		if strings.HasPrefix(de.Name(), prefix) && strings.HasSuffix(de.Name(), ".json") {
			names = append(names, de.Name())
		}
	}

	// Timestamps are zero-padded-free epoch millis; same digit count for
	// the decades that matter, so lexical order matches time order.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > n {
		names = names[:n]
	}

	var entries []*Entry
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			// A file disappearing mid-scan is not fatal to the scan.
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		entries = append(entries, &Entry{Name: name, Raw: raw, Fields: fields})
	}

	return entries, nil
}
