package mapper

import (
	"encoding/json"

	"docqa-be/internal/entity"
	"docqa-be/internal/model"

	"gorm.io/datatypes"
)

type ChargeMapper struct{}

func NewChargeMapper() *ChargeMapper {
	return &ChargeMapper{}
}

func (m *ChargeMapper) ToEntity(c *model.Charge) *entity.Charge {
	if c == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(c.Metadata) > 0 {
		// Malformed metadata is dropped rather than failing the read.
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.Charge{
		Id:            c.Id,
		AccountId:     c.AccountId,
		OrderId:       c.OrderId,
		Amount:        c.Amount,
		Currency:      c.Currency,
		Status:        entity.ChargeStatus(c.Status),
		PaymentToken:  c.PaymentToken,
		RedirectURL:   c.RedirectURL,
		QuestionCount: c.QuestionCount,
		Metadata:      metadata,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     timePtr(c.UpdatedAt),
		PaidAt:        c.PaidAt,
	}
}

func (m *ChargeMapper) ToModel(c *entity.Charge) *model.Charge {
	if c == nil {
		return nil
	}

	var metadata datatypes.JSON
	if c.Metadata != nil {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.Charge{
		Id:            c.Id,
		AccountId:     c.AccountId,
		OrderId:       c.OrderId,
		Amount:        c.Amount,
		Currency:      c.Currency,
		Status:        string(c.Status),
		PaymentToken:  c.PaymentToken,
		RedirectURL:   c.RedirectURL,
		QuestionCount: c.QuestionCount,
		Metadata:      metadata,
		CreatedAt:     c.CreatedAt,
		PaidAt:        c.PaidAt,
	}
}
