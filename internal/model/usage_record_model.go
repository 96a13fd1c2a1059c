package model

import (
	"time"

	"github.com/google/uuid"
)

type UsageRecord struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Question     string     `gorm:"type:text;not null"`
	Answer       string     `gorm:"type:text"`
	DocumentId   string     `gorm:"type:varchar(64)"`
	IndexVersion uint64     `gorm:"not null"`
	NoContext    bool       `gorm:"default:false"`
	AnsweredAt   time.Time  `gorm:"not null;index"`
	ChargeId     *uuid.UUID `gorm:"type:uuid"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
