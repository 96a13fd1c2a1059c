package dto

import "time"

type QueryRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
}

type PaymentInfo struct {
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	OrderId     string `json:"order_id,omitempty"`
	RedirectURL string `json:"redirect_url"`
}

type QueryResponse struct {
	Answer    string       `json:"answer"`
	Timestamp time.Time    `json:"timestamp"`
	Payment   *PaymentInfo `json:"payment,omitempty"`
}
