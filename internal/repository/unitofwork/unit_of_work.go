package unitofwork

import (
	"context"

	"docqa-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() contract.AccountRepository
	UsageRepository() contract.UsageRepository
	ChargeRepository() contract.ChargeRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
}
