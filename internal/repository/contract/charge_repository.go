package contract

import (
	"context"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/specification"
)

type ChargeRepository interface {
	Create(ctx context.Context, charge *entity.Charge) error
	Update(ctx context.Context, charge *entity.Charge) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Charge, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Charge, error)
}
