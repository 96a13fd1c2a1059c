package mapper

import (
	"docqa-be/internal/entity"
	"docqa-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}
	return &entity.DocumentChunk{
		Id:           c.Id,
		DocumentId:   c.DocumentId,
		DocumentName: c.DocumentName,
		ChunkId:      c.ChunkId,
		ChunkIndex:   c.ChunkIndex,
		StartOffset:  c.StartOffset,
		EndOffset:    c.EndOffset,
		Content:      c.Content,
		Embedding:    c.EmbeddingValue.Slice(),
		IndexVersion: c.IndexVersion,
		CreatedAt:    c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}
	return &model.DocumentChunk{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		DocumentName:   c.DocumentName,
		ChunkId:        c.ChunkId,
		ChunkIndex:     c.ChunkIndex,
		StartOffset:    c.StartOffset,
		EndOffset:      c.EndOffset,
		Content:        c.Content,
		EmbeddingValue: pgvector.NewVector(c.Embedding),
		IndexVersion:   c.IndexVersion,
		CreatedAt:      c.CreatedAt,
	}
}
