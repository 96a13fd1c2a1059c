package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Charge struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	OrderId       string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	Amount        int64          `gorm:"not null"`
	Currency      string         `gorm:"type:varchar(8);not null"`
	Status        string         `gorm:"type:varchar(20);not null;index"`
	PaymentToken  string         `gorm:"type:varchar(255)"`
	RedirectURL   string         `gorm:"type:text"`
	QuestionCount int64          `gorm:"not null"`
	Metadata      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	PaidAt        *time.Time
}

func (Charge) TableName() string {
	return "charges"
}
