package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Embedder converts text into a vector. It is the pluggable embedding
// capability of the similarity index; the manager never calls it directly.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

type GeminiOption func(*GeminiEmbedder)

func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiEmbedder) {
		g.model = model
	}
}

// NewGemini creates an Embedder backed by the Gemini embedding API on
// Vertex AI.
func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiEmbedder{
		client: client,
		model:  "gemini-embedding-001",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), &genai.EmbedContentConfig{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content")
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.New("empty embedding response")
	}

	return resp.Embeddings[0].Values, nil
}
