package mapper

import (
	"docqa-be/internal/entity"
	"docqa-be/internal/model"
)

type UsageMapper struct{}

func NewUsageMapper() *UsageMapper {
	return &UsageMapper{}
}

func (m *UsageMapper) ToEntity(u *model.UsageRecord) *entity.UsageRecord {
	if u == nil {
		return nil
	}
	return &entity.UsageRecord{
		Id:           u.Id,
		AccountId:    u.AccountId,
		Question:     u.Question,
		Answer:       u.Answer,
		DocumentId:   u.DocumentId,
		IndexVersion: u.IndexVersion,
		NoContext:    u.NoContext,
		AnsweredAt:   u.AnsweredAt,
		ChargeId:     u.ChargeId,
	}
}

func (m *UsageMapper) ToModel(u *entity.UsageRecord) *model.UsageRecord {
	if u == nil {
		return nil
	}
	return &model.UsageRecord{
		Id:           u.Id,
		AccountId:    u.AccountId,
		Question:     u.Question,
		Answer:       u.Answer,
		DocumentId:   u.DocumentId,
		IndexVersion: u.IndexVersion,
		NoContext:    u.NoContext,
		AnsweredAt:   u.AnsweredAt,
		ChargeId:     u.ChargeId,
	}
}
