package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docqa-be/internal/dto"
	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/pkg/mailer"
	"docqa-be/internal/pkg/payment"
	"docqa-be/internal/pkg/quota"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/repository/specification"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/events"
	"docqa-be/pkg/rag/engine"

	"github.com/google/uuid"
)

const billingModule = "BILLING"

type BillingConfig struct {
	JwtSecret          string
	TokenTTL           time.Duration
	PricePerCharge     int64
	Currency           string
	QuestionsPerCharge int
	FinishURL          string
}

type IBillingService interface {
	SetSender(ctx context.Context, req *dto.SetSenderRequest) (*dto.SetSenderResponse, error)
	// Authorize checks the account and reserves one unit of its daily quota.
	Authorize(ctx context.Context, accountId uuid.UUID) (*Authorization, error)
	// Release returns a reservation for a query that did not produce an answer.
	Release(ctx context.Context, auth *Authorization)
	RecordUsage(ctx context.Context, account *entity.Account, question string, result *engine.Result) (*dto.PaymentInfo, error)
	ListUsage(ctx context.Context, accountId uuid.UUID, limit, offset int) (*dto.UsageListResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type billingService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateway        payment.Gateway
	quota          quota.Counter
	eventPublisher EventPublisher
	mailer         mailer.IEmailService
	cfg            BillingConfig
	logger         logger.ILogger
	now            func() time.Time
}

// NewBillingService wires the metering flow. quotaCounter, eventPublisher and
// emailService may be nil. A non-nil emailService mails receipts inline; pass
// nil when the receipt consumer sends them from PAYMENT_CREATED events.
func NewBillingService(
	uowFactory unitofwork.RepositoryFactory,
	gateway payment.Gateway,
	quotaCounter quota.Counter,
	eventPublisher EventPublisher,
	emailService mailer.IEmailService,
	cfg BillingConfig,
	log logger.ILogger,
) IBillingService {
	return &billingService{
		uowFactory:     uowFactory,
		gateway:        gateway,
		quota:          quotaCounter,
		eventPublisher: eventPublisher,
		mailer:         emailService,
		cfg:            cfg,
		logger:         log,
		now:            time.Now,
	}
}

func (s *billingService) SetSender(ctx context.Context, req *dto.SetSenderRequest) (*dto.SetSenderResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.SenderEmail))
	name := strings.TrimSpace(req.SenderName)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if account == nil {
		account = &entity.Account{
			Id:        uuid.New(),
			Email:     email,
			Name:      name,
			CreatedAt: now,
		}
		if err := uow.AccountRepository().Create(ctx, account); err != nil {
			return nil, err
		}
	} else if account.Name != name {
		account.Name = name
		account.UpdatedAt = &now
		if err := uow.AccountRepository().Update(ctx, account); err != nil {
			return nil, err
		}
	}

	token, err := serverutils.IssueToken(s.cfg.JwtSecret, account.Id, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(billingModule, "sender set", map[string]interface{}{"account_id": account.Id.String()})

	return &dto.SetSenderResponse{
		CustomerId: account.Id,
		Email:      account.Email,
		Token:      token,
	}, nil
}

// Authorization is an account cleared to ask one question.
type Authorization struct {
	Account     *entity.Account
	Reservation quota.Reservation
}

func (s *billingService) Authorize(ctx context.Context, accountId uuid.UUID) (*Authorization, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	auth := &Authorization{Account: account}
	if s.quota != nil {
		reservation, err := s.quota.Reserve(ctx, accountId)
		if err != nil {
			if errors.Is(err, quota.ErrQuotaExceeded) {
				return nil, ErrQuotaExceeded
			}
			// The counter is advisory; an outage must not block answering.
			s.logger.Warn(billingModule, "quota counter unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			auth.Reservation = reservation
		}
	}
	return auth, nil
}

func (s *billingService) Release(ctx context.Context, auth *Authorization) {
	if s.quota == nil || auth == nil {
		return
	}
	if err := s.quota.Release(ctx, auth.Reservation); err != nil {
		s.logger.Warn(billingModule, "failed to release quota", map[string]interface{}{"error": err.Error()})
	}
}

func (s *billingService) RecordUsage(ctx context.Context, account *entity.Account, question string, result *engine.Result) (*dto.PaymentInfo, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Serialize counting per account so every Nth question charges exactly once.
	locked, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: account.Id}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, ErrAccountNotFound
	}

	record := &entity.UsageRecord{
		Id:           uuid.New(),
		AccountId:    account.Id,
		Question:     question,
		Answer:       result.Answer,
		DocumentId:   result.DocumentID,
		IndexVersion: result.IndexVersion,
		NoContext:    result.NoContext,
		AnsweredAt:   result.Timestamp,
	}
	if err := uow.UsageRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	count, err := uow.UsageRepository().Count(ctx, specification.ByAccountID{AccountID: account.Id})
	if err != nil {
		return nil, err
	}

	var charge *entity.Charge
	if s.cfg.QuestionsPerCharge > 0 && count%int64(s.cfg.QuestionsPerCharge) == 0 {
		charge = s.newCharge(ctx, locked, count)
		if err := uow.ChargeRepository().Create(ctx, charge); err != nil {
			return nil, err
		}
		record.ChargeId = &charge.Id
		if err := uow.UsageRepository().Update(ctx, record); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.QueryAnswered(account.Id.String(), count, result.IndexVersion, result.NoContext))

	if charge == nil {
		return nil, nil
	}

	if charge.Status == entity.ChargeStatusPending {
		s.publish(ctx, events.PaymentCreated(charge.Id.String(), charge.OrderId, account.Id.String(), charge.Amount, charge.Currency))
		if s.mailer != nil {
			if err := s.mailer.SendChargeReceipt(locked.Email, locked.Name, ReceiptFor(charge)); err != nil {
				s.logger.Warn(billingModule, "failed to send charge receipt", map[string]interface{}{
					"order_id": charge.OrderId,
					"error":    err.Error(),
				})
			}
		}
	}

	return &dto.PaymentInfo{
		Status:      string(charge.Status),
		Amount:      charge.Amount,
		Currency:    charge.Currency,
		OrderId:     charge.OrderId,
		RedirectURL: charge.RedirectURL,
	}, nil
}

// newCharge opens a hosted payment session. A gateway failure still yields a
// charge row, marked failed, so the miss is visible in the ledger.
func (s *billingService) newCharge(ctx context.Context, account *entity.Account, questionCount int64) *entity.Charge {
	chargeId := uuid.New()
	charge := &entity.Charge{
		Id:            chargeId,
		AccountId:     account.Id,
		OrderId:       "DOCQA-" + chargeId.String(),
		Amount:        s.cfg.PricePerCharge,
		Currency:      s.cfg.Currency,
		Status:        entity.ChargeStatusPending,
		QuestionCount: questionCount,
		Metadata:      map[string]interface{}{},
		CreatedAt:     s.now().UTC(),
	}

	session, err := s.gateway.CreateCharge(ctx, payment.ChargeRequest{
		OrderID:       charge.OrderId,
		Amount:        charge.Amount,
		ItemName:      "DocQA answers",
		QuestionCount: questionCount,
		CustomerName:  account.Name,
		CustomerEmail: account.Email,
		FinishURL:     s.cfg.FinishURL,
	})
	if err != nil {
		s.logger.Error(billingModule, "failed to create charge", map[string]interface{}{
			"account_id": account.Id.String(),
			"order_id":   charge.OrderId,
			"error":      err.Error(),
		})
		charge.Status = entity.ChargeStatusFailed
		charge.Metadata["error"] = err.Error()
		return charge
	}

	charge.PaymentToken = session.Token
	charge.RedirectURL = session.RedirectURL
	return charge
}

func (s *billingService) ListUsage(ctx context.Context, accountId uuid.UUID, limit, offset int) (*dto.UsageListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.UsageRepository().Count(ctx, specification.ByAccountID{AccountID: accountId})
	if err != nil {
		return nil, err
	}
	records, err := uow.UsageRepository().FindAll(ctx,
		specification.ByAccountID{AccountID: accountId},
		specification.OrderBy{Field: "answered_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.UsageRecordResponse, 0, len(records))
	for _, r := range records {
		res = append(res, dto.UsageRecordResponse{
			Id:           r.Id,
			Question:     r.Question,
			Answer:       r.Answer,
			DocumentId:   r.DocumentId,
			IndexVersion: r.IndexVersion,
			NoContext:    r.NoContext,
			AnsweredAt:   r.AnsweredAt,
			ChargeId:     r.ChargeId,
		})
	}
	return &dto.UsageListResponse{Total: total, Records: res}, nil
}

func (s *billingService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if !s.gateway.VerifySignature(req.OrderId, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		s.logger.Warn(billingModule, "signature mismatch", map[string]interface{}{"order_id": req.OrderId})
		return ErrInvalidSignature
	}

	newStatus, ok := MapTransactionStatus(req.TransactionStatus, req.FraudStatus)
	if !ok {
		s.logger.Info(billingModule, "ignoring notification", map[string]interface{}{
			"order_id": req.OrderId,
			"status":   req.TransactionStatus,
		})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	charge, err := uow.ChargeRepository().FindOne(ctx, specification.ByOrderID{OrderID: req.OrderId}, specification.ForUpdate{})
	if err != nil {
		return err
	}
	if charge == nil {
		return ErrChargeNotFound
	}
	if charge.Status == newStatus || charge.Status == entity.ChargeStatusPaid {
		// Replays and late notifications after settlement are no-ops.
		return nil
	}

	now := s.now().UTC()
	charge.Status = newStatus
	charge.UpdatedAt = &now
	if newStatus == entity.ChargeStatusPaid {
		charge.PaidAt = &now
	}
	if charge.Metadata == nil {
		charge.Metadata = map[string]interface{}{}
	}
	charge.Metadata["transaction_status"] = req.TransactionStatus
	if req.FraudStatus != "" {
		charge.Metadata["fraud_status"] = req.FraudStatus
	}

	if err := uow.ChargeRepository().Update(ctx, charge); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info(billingModule, "charge updated", map[string]interface{}{
		"order_id": charge.OrderId,
		"status":   string(newStatus),
	})
	s.publish(ctx, events.PaymentUpdated(charge.OrderId, string(newStatus)))
	return nil
}

func (s *billingService) publish(ctx context.Context, evt events.BaseEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn(billingModule, fmt.Sprintf("failed to publish %s", evt.Type), map[string]interface{}{"error": err.Error()})
	}
}

// MapTransactionStatus translates a midtrans transaction_status. ok is false
// for statuses that leave the charge untouched.
func MapTransactionStatus(transactionStatus, fraudStatus string) (entity.ChargeStatus, bool) {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return entity.ChargeStatusPending, true
		}
		return entity.ChargeStatusPaid, true
	case "settlement":
		return entity.ChargeStatusPaid, true
	case "pending":
		return entity.ChargeStatusPending, true
	case "deny", "cancel", "expire", "failure":
		return entity.ChargeStatusFailed, true
	default:
		return "", false
	}
}

func ReceiptFor(charge *entity.Charge) mailer.Receipt {
	return mailer.Receipt{
		OrderId:       charge.OrderId,
		Amount:        charge.Amount,
		Currency:      charge.Currency,
		QuestionCount: charge.QuestionCount,
		RedirectURL:   charge.RedirectURL,
		IssuedAt:      charge.CreatedAt,
	}
}
