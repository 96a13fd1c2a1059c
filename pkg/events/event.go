package events

import "time"

const (
	TypeDocumentProcessed = "DOCUMENT_PROCESSED"
	TypeQueryAnswered     = "QUERY_ANSWERED"
	TypePaymentCreated    = "PAYMENT_CREATED"
	TypePaymentUpdated    = "PAYMENT_UPDATED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUERY_ANSWERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func DocumentProcessed(documentID, name string, chunks int, version uint64) BaseEvent {
	return New(TypeDocumentProcessed, map[string]interface{}{
		"document_id":   documentID,
		"document_name": name,
		"chunks":        chunks,
		"index_version": version,
	})
}

func QueryAnswered(accountID string, usageCount int64, version uint64, noContext bool) BaseEvent {
	return New(TypeQueryAnswered, map[string]interface{}{
		"account_id":    accountID,
		"usage_count":   usageCount,
		"index_version": version,
		"no_context":    noContext,
	})
}

func PaymentCreated(chargeID, orderID, accountID string, amount int64, currency string) BaseEvent {
	return New(TypePaymentCreated, map[string]interface{}{
		"charge_id":  chargeID,
		"order_id":   orderID,
		"account_id": accountID,
		"amount":     amount,
		"currency":   currency,
	})
}

func PaymentUpdated(orderID, status string) BaseEvent {
	return New(TypePaymentUpdated, map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
}
