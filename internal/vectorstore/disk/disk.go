package disk

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"ragchat/internal/domain"
	"ragchat/internal/storage"
)

// IndexFile is the name of the persisted index inside the index directory.
const IndexFile = "vectors.json"

// Store is a vector store persisted as a single JSON file, searched with
// brute-force cosine similarity. It is the on-disk analog of an embedded
// vector database: small corpora, one writer, reload on open.
type Store struct {
	dir       string
	log       *zap.Logger
	dimension int
	points    []point
}

type point struct {
	DocumentID string    `json:"document_id"`
	ChunkID    string    `json:"chunk_id"`
	Source     string    `json:"source"`
	Text       string    `json:"text"`
	Index      int       `json:"index"`
	Vector     []float64 `json:"vector"`
}

type indexFile struct {
	Dimension int     `json:"dimension"`
	Points    []point `json:"points"`
}

// Open returns a store backed by dir, loading any previously persisted
// index. A corrupt index file is logged and treated as empty; the next
// build overwrites it.
func Open(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{dir: dir, log: log}
	var f indexFile
	err := storage.LoadJSON(s.path(), &f)
	switch {
	case err == nil:
		s.dimension = f.Dimension
		s.points = f.Points
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, storage.ErrCorrupt):
		log.Warn("vector index unreadable, starting empty", zap.String("path", s.path()), zap.Error(err))
	default:
		log.Warn("vector index unavailable", zap.String("path", s.path()), zap.Error(err))
	}
	return s
}

func (s *Store) path() string { return filepath.Join(s.dir, IndexFile) }

func (s *Store) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	s.points = nil
	return nil
}

func (s *Store) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i, ch := range chunks {
		s.points = append(s.points, point{
			DocumentID: ch.DocumentID,
			ChunkID:    ch.ChunkID,
			Source:     ch.Source,
			Text:       ch.Text,
			Index:      ch.Index,
			Vector:     vectors[i],
		})
	}
	return s.persist()
}

func (s *Store) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	qn := norm(vector)
	scored := make([]domain.SearchResult, 0, len(s.points))
	for _, p := range s.points {
		score := 0.0
		if pn := norm(p.Vector); qn > 0 && pn > 0 {
			score = dot(p.Vector, vector) / (qn * pn)
		}
		scored = append(scored, domain.SearchResult{
			Chunk: domain.Chunk{
				DocumentID: p.DocumentID,
				ChunkID:    p.ChunkID,
				Source:     p.Source,
				Text:       p.Text,
				Index:      p.Index,
			},
			Score: score,
		})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func (s *Store) Clear(_ context.Context) error {
	s.points = nil
	return s.persist()
}

// Stats reports one logical collection per distinct source document.
func (s *Store) Stats(_ context.Context) (domain.Stats, error) {
	docs := make(map[string]struct{})
	for _, p := range s.points {
		docs[p.DocumentID] = struct{}{}
	}
	return domain.Stats{Collections: len(docs), Chunks: len(s.points)}, nil
}

func (s *Store) persist() error {
	return storage.SaveJSON(s.path(), indexFile{Dimension: s.dimension, Points: s.points})
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
