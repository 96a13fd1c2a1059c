package implementation

import (
	"context"
	"errors"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChargeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChargeMapper
}

func NewChargeRepository(db *gorm.DB) contract.ChargeRepository {
	return &ChargeRepositoryImpl{
		db:     db,
		mapper: mapper.NewChargeMapper(),
	}
}

func (r *ChargeRepositoryImpl) Create(ctx context.Context, charge *entity.Charge) error {
	m := r.mapper.ToModel(charge)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*charge = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChargeRepositoryImpl) Update(ctx context.Context, charge *entity.Charge) error {
	m := r.mapper.ToModel(charge)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*charge = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChargeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Charge, error) {
	var m model.Charge
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChargeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Charge, error) {
	var models []*model.Charge
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Charge, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
