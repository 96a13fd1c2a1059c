package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the paying customer registered through set_sender.
type Account struct {
	Id        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
