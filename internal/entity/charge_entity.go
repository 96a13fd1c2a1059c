package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "pending"
	ChargeStatusPaid    ChargeStatus = "paid"
	ChargeStatusFailed  ChargeStatus = "failed"
)

type Charge struct {
	Id            uuid.UUID
	AccountId     uuid.UUID
	OrderId       string
	Amount        int64
	Currency      string
	Status        ChargeStatus
	PaymentToken  string
	RedirectURL   string
	QuestionCount int64
	Metadata      map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	PaidAt        *time.Time
}
