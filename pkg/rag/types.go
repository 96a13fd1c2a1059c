package rag

// Passage is a retrieved chunk handed to answer generation, in rank order.
type Passage struct {
	ChunkID    string
	ChunkIndex int
	Text       string
	Similarity float64
	Truncated  bool
}
