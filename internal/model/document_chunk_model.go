package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// DocumentChunk mirrors the live index. The vector column is untyped in
// dimension because the embedding provider is configurable.
type DocumentChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     string          `gorm:"type:varchar(64);not null;index"`
	DocumentName   string          `gorm:"type:varchar(255)"`
	ChunkId        string          `gorm:"type:varchar(128);not null;uniqueIndex"`
	ChunkIndex     int             `gorm:"not null"`
	StartOffset    int             `gorm:"not null"`
	EndOffset      int             `gorm:"not null"`
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector"`
	IndexVersion   uint64          `gorm:"not null"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
