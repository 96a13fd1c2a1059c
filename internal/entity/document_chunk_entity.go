package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is the durable copy of one index entry.
type DocumentChunk struct {
	Id           uuid.UUID
	DocumentId   string
	DocumentName string
	ChunkId      string
	ChunkIndex   int
	StartOffset  int
	EndOffset    int
	Content      string
	Embedding    []float32
	IndexVersion uint64
	CreatedAt    time.Time
}
