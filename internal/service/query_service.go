package service

import (
	"context"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type IQueryService interface {
	Ask(ctx context.Context, accountId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error)
}

type queryService struct {
	engine  RagEngine
	billing IBillingService
	logger  logger.ILogger
}

func NewQueryService(ragEngine RagEngine, billing IBillingService, log logger.ILogger) IQueryService {
	return &queryService{
		engine:  ragEngine,
		billing: billing,
		logger:  log,
	}
}

// Ask authorizes the account, answers from the current index and meters the
// answer. Failed answers are not billed.
func (s *queryService) Ask(ctx context.Context, accountId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	auth, err := s.billing.Authorize(ctx, accountId)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Answer(ctx, req.Question)
	if err != nil {
		s.billing.Release(ctx, auth)
		return nil, err
	}

	res := &dto.QueryResponse{
		Answer:    result.Answer,
		Timestamp: result.Timestamp,
	}

	paymentInfo, err := s.billing.RecordUsage(ctx, auth.Account, req.Question, result)
	if err != nil {
		// The answer is already produced; a metering failure must not hide it.
		s.logger.Error("QUERY", "failed to record usage", map[string]interface{}{
			"account_id": accountId.String(),
			"error":      err.Error(),
		})
		return res, nil
	}
	res.Payment = paymentInfo
	return res, nil
}
