package service

import (
	"context"
	"fmt"

	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/pkg/mailer"
	"docqa-be/internal/repository/specification"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/events"
	pktNats "docqa-be/pkg/nats"

	"github.com/google/uuid"
)

const receiptDurable = "receipt-mailer"

// EventSubscriber attaches handlers to broker events. *nats.Subscriber satisfies it.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

type receiptService struct {
	subscriber EventSubscriber
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

// NewReceiptService mails a receipt for every PAYMENT_CREATED event.
func NewReceiptService(
	subscriber EventSubscriber,
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IConsumerService {
	return &receiptService{
		subscriber: subscriber,
		uowFactory: uowFactory,
		mailer:     emailService,
		logger:     log,
	}
}

func (s *receiptService) Consume(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, events.TypePaymentCreated, receiptDurable, s.handle)
}

func (s *receiptService) handle(ctx context.Context, event events.Event) error {
	raw, _ := event.Payload()["charge_id"].(string)
	chargeId, err := uuid.Parse(raw)
	if err != nil {
		// Redelivery cannot fix a malformed event.
		s.logger.Warn("RECEIPT", "event without charge id", map[string]interface{}{"charge_id": raw})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	charge, err := uow.ChargeRepository().FindOne(ctx, specification.ByID{ID: chargeId})
	if err != nil {
		return err
	}
	if charge == nil {
		return fmt.Errorf("charge %s not found", chargeId)
	}
	account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: charge.AccountId})
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account %s not found", charge.AccountId)
	}

	return s.mailer.SendChargeReceipt(account.Email, account.Name, ReceiptFor(charge))
}
