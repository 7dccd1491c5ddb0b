package knowledge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// Embedder turns text into the vector the similarity backend indexes by.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// QdrantConfig holds connection settings for the vector backend.
type QdrantConfig struct {
	// URL is the Qdrant server address, e.g. "https://example.qdrant.io:6334".
	URL string

	// Collection is the collection holding the scraped knowledge chunks.
	Collection string

	// APIKey is an optional authentication key.
	APIKey string

	// MinScore drops results below this similarity (0.0-1.0).
	MinScore float32
}

// QdrantRetriever implements Retriever against a Qdrant collection.
type QdrantRetriever struct {
	client     *qdrant.Client
	collection string
	minScore   float32
	embedder   Embedder
}

// NewQdrantRetriever connects to Qdrant. The embedder must produce vectors
// with the same dimensionality the collection was built with.
func NewQdrantRetriever(cfg QdrantConfig, embedder Embedder) (*QdrantRetriever, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}

	port := 6334
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &QdrantRetriever{
		client:     client,
		collection: cfg.Collection,
		minScore:   cfg.MinScore,
		embedder:   embedder,
	}, nil
}

// Search embeds the query and runs nearest-neighbor search over the scraped
// chunk collection.
func (r *QdrantRetriever) Search(ctx context.Context, query string, limit int) ([]Chunk, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	limitU := uint64(limit)
	points, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limitU,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	chunks := make([]Chunk, 0, len(points))
	for _, point := range points {
		if r.minScore > 0 && point.Score < r.minScore {
			continue
		}
		chunks = append(chunks, chunkFromPayload(point.Payload))
	}
	return chunks, nil
}

func (r *QdrantRetriever) Close() error {
	return r.client.Close()
}

func chunkFromPayload(payload map[string]*qdrant.Value) Chunk {
	c := Chunk{Source: SourceScraped, Category: CategoryOther}
	if payload == nil {
		return c
	}
	if v, ok := payload["text"]; ok {
		c.Text = v.GetStringValue()
	}
	if v, ok := payload["category"]; ok {
		if cat := v.GetStringValue(); cat != "" {
			c.Category = Category(cat)
		}
	}
	if v, ok := payload["updated_at"]; ok {
		if ts, err := time.Parse(time.RFC3339, v.GetStringValue()); err == nil {
			c.UpdatedAt = ts
		}
	}
	return c
}
