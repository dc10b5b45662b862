package adapter_test

import (
	"context"
	"hash/fnv"
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/kevin-biot/mcp-memory/pkg/adapter"
	"github.com/kevin-biot/mcp-memory/pkg/model"
)

// hashEmbedder produces deterministic unit vectors from a text hash, so
// identical texts are identical vectors and the index behaves stably
// without a real embedding backend.
type hashEmbedder struct{}

func (hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, 64)
	var norm float32
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
		norm += vec[i] * vec[i]
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

func newTestIndex(t *testing.T) adapter.Index {
	index, err := adapter.NewChromem("", "testns", hashEmbedder{})
	gt.NoError(t, err)
	gt.NoError(t, index.Init(context.Background()))
	return index
}

func TestIndexAddAndQuery(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	meta := map[string]string{"sessionId": "s1", "domain": "devops"}
	gt.NoError(t, index.Add(ctx, model.KindConversation, "s1_100", "pods crashing in prod", meta))

	hits, err := index.Query(ctx, model.KindConversation, "pods crashing in prod", 5, nil)
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].ID, "s1_100")
	gt.Equal(t, hits[0].Metadata["sessionId"], "s1")
	gt.True(t, hits[0].Distance < 0.001).Describe("identical text should have near-zero distance")
}

func TestIndexQueryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	hits, err := index.Query(ctx, model.KindOperational, "anything", 5, nil)
	gt.NoError(t, err)
	gt.A(t, hits).Length(0)
}

func TestIndexQueryClampsLimit(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	gt.NoError(t, index.Add(ctx, model.KindConversation, "a_1", "first document", nil))
	gt.NoError(t, index.Add(ctx, model.KindConversation, "b_2", "second document", nil))

	// Limit above collection size must not error.
	hits, err := index.Query(ctx, model.KindConversation, "document", 50, nil)
	gt.NoError(t, err)
	gt.A(t, hits).Length(2)
}

func TestIndexOverwriteSameID(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	gt.NoError(t, index.Add(ctx, model.KindConversation, "s1_100", "original text", nil))
	gt.NoError(t, index.Add(ctx, model.KindConversation, "s1_100", "replaced text", nil))

	hits, err := index.Query(ctx, model.KindConversation, "replaced text", 5, nil)
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].Content, "replaced text")
}

func TestIndexMetadataFilter(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	gt.NoError(t, index.Add(ctx, model.KindOperational, "inc1_1", "disk full on node",
		map[string]string{"environment": "prod"}))
	gt.NoError(t, index.Add(ctx, model.KindOperational, "inc2_2", "disk full on node again",
		map[string]string{"environment": "staging"}))

	hits, err := index.Query(ctx, model.KindOperational, "disk full", 5,
		map[string]string{"environment": "prod"})
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].ID, "inc1_1")
}

func TestIndexAddBeforeInit(t *testing.T) {
	index, err := adapter.NewChromem("", "testns", hashEmbedder{})
	gt.NoError(t, err)

	err = index.Add(context.Background(), model.KindConversation, "x_1", "doc", nil)
	gt.Error(t, err)
}
