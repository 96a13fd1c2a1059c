package contract

import (
	"context"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/specification"
)

type UsageRepository interface {
	Create(ctx context.Context, record *entity.UsageRecord) error
	Update(ctx context.Context, record *entity.UsageRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
