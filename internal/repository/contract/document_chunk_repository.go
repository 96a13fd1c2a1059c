package contract

import (
	"context"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/specification"
)

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	// DeleteAll hard-deletes every stored chunk; only one document is live at a time.
	DeleteAll(ctx context.Context) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
