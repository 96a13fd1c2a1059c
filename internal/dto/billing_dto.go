package dto

import (
	"time"

	"github.com/google/uuid"
)

type SetSenderRequest struct {
	SenderEmail string `json:"sender_email" validate:"required,email,max=255"`
	SenderName  string `json:"sender_name" validate:"required,max=255"`
}

type SetSenderResponse struct {
	CustomerId uuid.UUID `json:"customer_id"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
}

type UsageRecordResponse struct {
	Id           uuid.UUID  `json:"id"`
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	DocumentId   string     `json:"document_id"`
	IndexVersion uint64     `json:"index_version"`
	NoContext    bool       `json:"no_context"`
	AnsweredAt   time.Time  `json:"answered_at"`
	ChargeId     *uuid.UUID `json:"charge_id,omitempty"`
}

type UsageListResponse struct {
	Total   int64                 `json:"total"`
	Records []UsageRecordResponse `json:"records"`
}

// MidtransWebhookRequest is the payment notification body posted by midtrans.
type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status" validate:"required"`
	OrderId           string `json:"order_id" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key" validate:"required"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
}
