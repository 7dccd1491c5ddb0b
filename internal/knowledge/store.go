// Package knowledge answers questions about the marketplace (warranty,
// financing terms, branches, buying process). Retrieval prefers the vector
// backend over ingested scraped content and degrades to keyword matching
// against curated fallback chunks; Query never fails.
package knowledge

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Category classifies a chunk by topic.
type Category string

const (
	CategoryWarranty         Category = "warranty"
	CategoryFinancing        Category = "financing"
	CategoryLocations        Category = "locations"
	CategoryValueProposition Category = "value_proposition"
	CategoryProcess          Category = "process"
	CategoryOther            Category = "other"
)

// RequiredCategories must each be covered by at least one chunk at all times.
var RequiredCategories = []Category{
	CategoryWarranty,
	CategoryFinancing,
	CategoryLocations,
	CategoryValueProposition,
	CategoryProcess,
}

// categoryPriority breaks keyword-score ties; lower wins.
var categoryPriority = map[Category]int{
	CategoryWarranty:         0,
	CategoryFinancing:        1,
	CategoryProcess:          2,
	CategoryLocations:        3,
	CategoryValueProposition: 4,
	CategoryOther:            5,
}

// Source tells where a chunk came from.
type Source string

const (
	SourceScraped  Source = "scraped"
	SourceFallback Source = "fallback"
)

// Chunk is one retrievable unit of knowledge.
type Chunk struct {
	Text      string    `json:"text"`
	Category  Category  `json:"category"`
	Source    Source    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Retriever is the external similarity-search backend.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]Chunk, error)
	Close() error
}

// Store serves knowledge queries. The active chunk set is swapped as a whole
// on re-ingest so concurrent readers never observe a half-replaced corpus.
type Store struct {
	retriever  Retriever // nil when no vector backend is configured
	timeout    time.Duration
	topK       int
	onFallback func()

	fallback []Chunk
	active   atomic.Pointer[[]Chunk]
}

// Option configures a Store.
type Option func(*Store)

// WithRetriever attaches a vector backend queried before the fallback set.
func WithRetriever(r Retriever) Option {
	return func(s *Store) { s.retriever = r }
}

// WithTimeout bounds each vector backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTopK sets how many chunks a query returns.
func WithTopK(k int) Option {
	return func(s *Store) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithFallbackObserver registers a callback invoked every time a query is
// answered by keyword search instead of the vector backend.
func WithFallbackObserver(fn func()) Option {
	return func(s *Store) { s.onFallback = fn }
}

// NewStore builds a store over the curated fallback chunks. Every required
// category must be covered or construction fails.
func NewStore(fallback []Chunk, opts ...Option) (*Store, error) {
	covered := make(map[Category]bool)
	for i := range fallback {
		fallback[i].Source = SourceFallback
		covered[fallback[i].Category] = true
	}
	for _, c := range RequiredCategories {
		if !covered[c] {
			return nil, fmt.Errorf("knowledge: no fallback chunk for required category %q", c)
		}
	}

	s := &Store{
		timeout:  3 * time.Second,
		topK:     3,
		fallback: fallback,
	}
	for _, opt := range opts {
		opt(s)
	}

	initial := make([]Chunk, len(fallback))
	copy(initial, fallback)
	s.active.Store(&initial)
	return s, nil
}

// Ingest replaces the scraped chunk set in one atomic swap. Required
// categories the scrape missed keep their fallback chunks, so no category is
// ever left empty.
func (s *Store) Ingest(scraped []Chunk) {
	now := time.Now().UTC()
	covered := make(map[Category]bool)
	next := make([]Chunk, 0, len(scraped)+len(s.fallback))
	for _, c := range scraped {
		c.Source = SourceScraped
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		covered[c.Category] = true
		next = append(next, c)
	}
	for _, c := range s.fallback {
		if !covered[c.Category] {
			next = append(next, c)
		}
	}
	s.active.Store(&next)
}

// Chunks returns the active chunk set snapshot.
func (s *Store) Chunks() []Chunk {
	return *s.active.Load()
}

// Query resolves a question: vector backend first, keyword fallback second.
// It returns an empty slice only when the store holds no chunks at all.
func (s *Store) Query(ctx context.Context, query string) []Chunk {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if s.retriever != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		results, err := s.retriever.Search(rctx, query, s.topK)
		cancel()
		if err != nil {
			log.Printf("knowledge: vector search failed, using fallback: %v", err)
		} else if len(results) > 0 {
			return results
		}
	}

	if s.onFallback != nil {
		s.onFallback()
	}
	return s.keywordSearch(query)
}

// keywordSearch ranks the active chunk set by query-term overlap, ties
// broken by category priority. With a non-empty set it always returns at
// least one chunk, even at zero overlap.
func (s *Store) keywordSearch(query string) []Chunk {
	chunks := s.Chunks()
	if len(chunks) == 0 {
		return nil
	}

	terms := tokenize(query)
	type scored struct {
		chunk Chunk
		score int
	}
	ranked := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		ranked = append(ranked, scored{chunk: c, score: overlap(terms, c.Text)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return categoryPriority[ranked[i].chunk.Category] < categoryPriority[ranked[j].chunk.Category]
	})

	n := s.topK
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]Chunk, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, r.chunk)
	}
	return out
}

var wordSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func tokenize(text string) []string {
	var out []string
	for _, w := range wordSplit.Split(strings.ToLower(text), -1) {
		if len(w) > 2 { // skip particles like "de", "el", "la"
			out = append(out, w)
		}
	}
	return out
}

func overlap(terms []string, text string) int {
	words := make(map[string]int)
	for _, w := range wordSplit.Split(strings.ToLower(text), -1) {
		words[w]++
	}
	score := 0
	for _, t := range terms {
		score += words[t]
	}
	return score
}
