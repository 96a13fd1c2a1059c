// Package index holds the in-memory vector index. Each successful Build
// publishes a new immutable Snapshot; readers keep whichever snapshot they
// loaded, so a query never observes a half-replaced index.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"docqa-be/pkg/chunking"
	"docqa-be/pkg/rag"
)

// Entry is one chunk and its embedding.
type Entry struct {
	ChunkID string
	Chunk   chunking.Chunk
	Vector  []float32
}

// Result is a ranked match produced by Search. It is not persisted.
type Result struct {
	ChunkID    string
	Chunk      chunking.Chunk
	Similarity float64
}

// BuildInput describes the document a snapshot is built from.
type BuildInput struct {
	DocumentID   string
	DocumentName string
	Entries      []Entry
}

type Snapshot struct {
	Version      uint64
	DocumentID   string
	DocumentName string
	Dimension    int
	BuiltAt      time.Time

	entries []Entry
	norms   []float64
}

// Len returns the number of indexed chunks.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the snapshot's entries in chunk order.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Search ranks entries by cosine similarity to query, descending, ties broken by
// ascending chunk index. At most k results are returned.
func (s *Snapshot) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 || len(s.entries) == 0 {
		return []Result{}, nil
	}
	if len(query) != s.Dimension {
		return nil, rag.Errorf(rag.KindSearch, "query vector has dimension %d, index has %d", len(query), s.Dimension)
	}

	queryNorm := norm(query)
	results := make([]Result, len(s.entries))
	for i, e := range s.entries {
		results[i] = Result{
			ChunkID:    e.ChunkID,
			Chunk:      e.Chunk,
			Similarity: cosine(query, queryNorm, e.Vector, s.norms[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// VectorIndex owns the current snapshot.
type VectorIndex struct {
	buildMu sync.Mutex
	current atomic.Pointer[Snapshot]
	version uint64
	now     func() time.Time
}

func New() *VectorIndex {
	return &VectorIndex{now: time.Now}
}

// Current returns the live snapshot, or nil before the first successful Build.
func (v *VectorIndex) Current() *Snapshot {
	return v.current.Load()
}

// Ready reports whether at least one Build has completed.
func (v *VectorIndex) Ready() bool {
	return v.current.Load() != nil
}

// Build validates input and atomically replaces the current snapshot. On error
// the previous snapshot stays visible. Concurrent builds run one at a time.
func (v *VectorIndex) Build(in BuildInput) (*Snapshot, error) {
	v.buildMu.Lock()
	defer v.buildMu.Unlock()

	snap, err := newSnapshot(in)
	if err != nil {
		return nil, err
	}

	v.version++
	snap.Version = v.version
	snap.BuiltAt = v.now().UTC()
	v.current.Store(snap)
	return snap, nil
}

// Search runs against whatever snapshot is current at call time.
func (v *VectorIndex) Search(query []float32, k int) ([]Result, error) {
	snap := v.current.Load()
	if snap == nil {
		return []Result{}, nil
	}
	return snap.Search(query, k)
}

func newSnapshot(in BuildInput) (*Snapshot, error) {
	snap := &Snapshot{
		DocumentID:   in.DocumentID,
		DocumentName: in.DocumentName,
		entries:      make([]Entry, len(in.Entries)),
		norms:        make([]float64, len(in.Entries)),
	}

	seen := make(map[string]struct{}, len(in.Entries))
	for i, e := range in.Entries {
		if len(e.Vector) == 0 {
			return nil, fmt.Errorf("chunk %q has an empty vector", e.ChunkID)
		}
		if i == 0 {
			snap.Dimension = len(e.Vector)
		} else if len(e.Vector) != snap.Dimension {
			return nil, fmt.Errorf("chunk %q has dimension %d, expected %d", e.ChunkID, len(e.Vector), snap.Dimension)
		}
		if _, dup := seen[e.ChunkID]; dup {
			return nil, fmt.Errorf("duplicate chunk id %q", e.ChunkID)
		}
		seen[e.ChunkID] = struct{}{}

		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		snap.entries[i] = Entry{ChunkID: e.ChunkID, Chunk: e.Chunk, Vector: vec}
	}

	sort.SliceStable(snap.entries, func(i, j int) bool {
		return snap.entries[i].Chunk.Index < snap.entries[j].Chunk.Index
	})
	for i := range snap.entries {
		snap.norms[i] = norm(snap.entries[i].Vector)
	}
	return snap, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine treats a zero-norm side as similarity 0.
func cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}
