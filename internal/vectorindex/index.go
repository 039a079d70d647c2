// Package vectorindex provides an exact nearest-neighbour index over
// fragment embeddings, with binary persistence.
//
// Search is a linear scan: O(n·D) per query. That is a deliberate choice —
// knowledge bases here hold hundreds to low thousands of fragments, not
// web-scale corpora, and exact results avoid the tuning and recall questions
// an approximate index would bring.
package vectorindex

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

// Hit is a single similarity search result.
type Hit struct {
	// Distance is the cosine angular distance to the query: 1 − cos(θ).
	// 0 means identical direction, 1 orthogonal, 2 opposite.
	Distance float64

	// FragmentID identifies the matched fragment.
	FragmentID string
}

// Index holds fixed-dimension embeddings paired with fragment identifiers.
// The dimension is fixed at creation and never changes without a full
// rebuild. Index is not safe for concurrent mutation; the ingestion pipeline
// is its single writer.
type Index struct {
	dimensions int
	vectors    [][]float32
	ids        []string
}

// indexBlob is the gob persistence format.
type indexBlob struct {
	Dimensions int
	Vectors    [][]float32
	IDs        []string
}

// New creates an empty index for vectors of the given dimension.
func New(dimensions int) *Index {
	return &Index{dimensions: dimensions}
}

// Dimensions returns the fixed vector dimension.
func (i *Index) Dimensions() int {
	return i.dimensions
}

// Len returns the number of stored vectors.
func (i *Index) Len() int {
	return len(i.vectors)
}

// Insert appends a vector and its fragment identifier.
// A vector whose length differs from the index dimension is a caller error
// and fails with domain.ErrDimensionMismatch.
func (i *Index) Insert(vector []float32, fragmentID string) error {
	if len(vector) != i.dimensions {
		return fmt.Errorf("%w: got %d, index dimension is %d",
			domain.ErrDimensionMismatch, len(vector), i.dimensions)
	}
	i.vectors = append(i.vectors, vector)
	i.ids = append(i.ids, fragmentID)
	return nil
}

// Search returns the k nearest vectors to query by cosine angular distance,
// ascending. Ties keep insertion order. An empty index returns an empty
// slice, not an error; an index holding fewer than k vectors returns them
// all.
func (i *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != i.dimensions {
		return nil, fmt.Errorf("%w: query has %d, index dimension is %d",
			domain.ErrDimensionMismatch, len(query), i.dimensions)
	}
	if len(i.vectors) == 0 || k <= 0 {
		return []Hit{}, nil
	}

	qn := normalise(query)

	hits := make([]Hit, len(i.vectors))
	for idx, vec := range i.vectors {
		hits[idx] = Hit{
			Distance:   1 - dot(qn, normalise(vec)),
			FragmentID: i.ids[idx],
		}
	}

	// Stable: equal distances keep insertion order.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Save persists the index to path as a gob blob. Persistence is wholesale:
// the caller writes once after an entire ingestion run, never incrementally.
// The blob is encoded to a temp file in the same directory and renamed into
// place, so a crash mid-Save leaves the previous blob intact.
func (i *Index) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	tmpPath := tmp.Name()

	blob := indexBlob{
		Dimensions: i.dimensions,
		Vectors:    i.vectors,
		IDs:        i.ids,
	}
	if err := gob.NewEncoder(tmp).Encode(blob); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp index file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}

// Load reads a persisted index from path.
// A missing file yields domain.ErrStoreNotFound; a file that exists but
// cannot be decoded yields domain.ErrStoreCorrupt. A well-formed empty index
// loads without error.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var blob indexBlob
	if err := gob.NewDecoder(f).Decode(&blob); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStoreCorrupt, path, err)
	}
	if blob.Dimensions <= 0 || len(blob.Vectors) != len(blob.IDs) {
		return nil, fmt.Errorf("%w: %s: inconsistent blob", domain.ErrStoreCorrupt, path)
	}
	for _, vec := range blob.Vectors {
		if len(vec) != blob.Dimensions {
			return nil, fmt.Errorf("%w: %s: vector dimension drift", domain.ErrStoreCorrupt, path)
		}
	}

	return &Index{
		dimensions: blob.Dimensions,
		vectors:    blob.Vectors,
		ids:        blob.IDs,
	}, nil
}

// normalise returns the unit-length copy of v, in float64 for precision.
// A zero vector normalises to zeros, giving distance 1 to everything.
func normalise(v []float32) []float64 {
	var mag float64
	for _, x := range v {
		mag += float64(x) * float64(x)
	}
	mag = math.Sqrt(mag)

	out := make([]float64, len(v))
	if mag == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float64(x) / mag
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
