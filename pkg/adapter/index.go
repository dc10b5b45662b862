package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/kevin-biot/mcp-memory/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Hit is one nearest-neighbor result from the similarity index.
type Hit struct {
	ID       string
	Content  string
	Metadata map[string]string
	Distance float64
}

// Index wraps the similarity-search backend. Any failure from any method
// means "backend unavailable" to the caller; the manager reacts by
// degrading to fallback search, never by surfacing the error.
type Index interface {
	// Init lazily provisions both collections. Idempotent.
	Init(ctx context.Context) error

	// Add indexes a document. Re-adding the same ID overwrites silently.
	Add(ctx context.Context, kind model.RecordKind, id model.MemoryID, document string, metadata map[string]string) error

	// Query returns up to limit nearest neighbors ranked by ascending
	// distance. The where clause is an exact-match conjunction.
	Query(ctx context.Context, kind model.RecordKind, text string, limit int, where map[string]string) ([]*Hit, error)
}

// chromemIndex implements Index on chromem-go, an embedded vector
// database, with one collection per record kind.
type chromemIndex struct {
	db          *chromem.DB
	namespace   string
	embedder    Embedder
	timeout     time.Duration
	collections map[model.RecordKind]*chromem.Collection
}

type IndexOption func(*chromemIndex)

// WithCallTimeout bounds every outbound index call. Zero disables the bound.
func WithCallTimeout(d time.Duration) IndexOption {
	return func(x *chromemIndex) {
		x.timeout = d
	}
}

// NewChromem creates a chromem-backed index. An empty path keeps the
// index in memory; otherwise it persists under path.
func NewChromem(path, namespace string, embedder Embedder, opts ...IndexOption) (Index, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open vector database", goerr.V("path", path))
		}
	}

	x := &chromemIndex{
		db:          db,
		namespace:   namespace,
		embedder:    embedder,
		timeout:     30 * time.Second,
		collections: make(map[model.RecordKind]*chromem.Collection),
	}

	for _, opt := range opts {
		opt(x)
	}

	return x, nil
}

func (x *chromemIndex) collectionName(kind model.RecordKind) string {
	switch kind {
	case model.KindConversation:
		return fmt.Sprintf("conversations_%s", x.namespace)
	default:
		return fmt.Sprintf("operational_%s", x.namespace)
	}
}

func (x *chromemIndex) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if x.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, x.timeout)
}

func (x *chromemIndex) Init(ctx context.Context) error {
	embed := chromem.EmbeddingFunc(func(ctx context.Context, text string) ([]float32, error) {
		return x.embedder.Embed(ctx, text)
	})

	for _, kind := range []model.RecordKind{model.KindConversation, model.KindOperational} {
		if _, ok := x.collections[kind]; ok {
			continue
		}
		col, err := x.db.GetOrCreateCollection(x.collectionName(kind), nil, embed)
		if err != nil {
			return goerr.Wrap(err, "failed to create collection", goerr.V("kind", kind))
		}
		x.collections[kind] = col
	}

	return nil
}

func (x *chromemIndex) Add(ctx context.Context, kind model.RecordKind, id model.MemoryID, document string, metadata map[string]string) error {
	col, ok := x.collections[kind]
	if !ok {
		return goerr.New("collection not initialized", goerr.V("kind", kind))
	}

	ctx, cancel := x.bound(ctx)
	defer cancel()

	err := col.AddDocument(ctx, chromem.Document{
		ID:       string(id),
		Content:  document,
		Metadata: metadata,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to index document", goerr.V("id", id), goerr.V("kind", kind))
	}

	return nil
}

func (x *chromemIndex) Query(ctx context.Context, kind model.RecordKind, text string, limit int, where map[string]string) ([]*Hit, error) {
	col, ok := x.collections[kind]
	if !ok {
		return nil, goerr.New("collection not initialized", goerr.V("kind", kind))
	}

	// chromem rejects nResults larger than the candidate set.
	if count := col.Count(); count < limit {
		limit = count
	}
	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := x.bound(ctx)
	defer cancel()

	// A where clause can shrink the candidate set below limit; retry with
	// smaller limits instead of failing.
	var results []chromem.Result
	for {
		var err error
		results, err = col.Query(ctx, text, limit, where, nil)
		if err == nil {
			break
		}
		if limit > 1 && strings.Contains(err.Error(), "nResults") {
			limit--
			continue
		}
		return nil, goerr.Wrap(err, "vector query failed", goerr.V("kind", kind))
	}

	hits := make([]*Hit, 0, len(results))
	for _, res := range results {
		// chromem reports cosine similarity; the contract wants distance.
		distance := 1 - float64(res.Similarity)
		if distance < 0 {
			distance = 0
		}
		hits = append(hits, &Hit{
			ID:       res.ID,
			Content:  res.Content,
			Metadata: res.Metadata,
			Distance: distance,
		})
	}

	return hits, nil
}
