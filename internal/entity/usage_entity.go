package entity

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is one metered, answered question.
type UsageRecord struct {
	Id           uuid.UUID
	AccountId    uuid.UUID
	Question     string
	Answer       string
	DocumentId   string
	IndexVersion uint64
	NoContext    bool
	AnsweredAt   time.Time
	ChargeId     *uuid.UUID
}
