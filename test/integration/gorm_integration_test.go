package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/specification"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func connect(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err, "run cmd/migrate first")
	return gormDB
}

func TestGormConnection(t *testing.T) {
	gormDB := connect(t)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())

	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(context.Background())
	_, err = uow.DocumentChunkRepository().Count(context.Background())
	assert.NoError(t, err)
}

func TestAccountUsageAndChargeRoundTrip(t *testing.T) {
	gormDB := connect(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)

	account := &entity.Account{
		Id:        uuid.New(),
		Email:     "it-" + uuid.NewString() + "@example.com",
		Name:      "Integration",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, uow.AccountRepository().Create(ctx, account))

	found, err := uow.AccountRepository().FindOne(ctx, specification.ByEmail{Email: account.Email})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, account.Id, found.Id)

	charge := &entity.Charge{
		Id:            uuid.New(),
		AccountId:     account.Id,
		OrderId:       "DOCQA-" + uuid.NewString(),
		Amount:        100,
		Currency:      "USD",
		Status:        entity.ChargeStatusPending,
		QuestionCount: 5,
		Metadata:      map[string]interface{}{"source": "integration"},
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, uow.ChargeRepository().Create(ctx, charge))

	require.NoError(t, uow.Begin(ctx))
	locked, err := uow.ChargeRepository().FindOne(ctx, specification.ByOrderID{OrderID: charge.OrderId}, specification.ForUpdate{})
	require.NoError(t, err)
	require.NotNil(t, locked)
	locked.Status = entity.ChargeStatusPaid
	require.NoError(t, uow.ChargeRepository().Update(ctx, locked))
	require.NoError(t, uow.Commit())

	paid, err := uow.ChargeRepository().FindOne(ctx, specification.ByID{ID: charge.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ChargeStatusPaid, paid.Status)
	assert.Equal(t, "integration", paid.Metadata["source"])

	record := &entity.UsageRecord{
		Id:         uuid.New(),
		AccountId:  account.Id,
		Question:   "q",
		Answer:     "a",
		AnsweredAt: time.Now().UTC(),
		ChargeId:   &charge.Id,
	}
	require.NoError(t, uow.UsageRepository().Create(ctx, record))
	count, err := uow.UsageRepository().Count(ctx, specification.ByAccountID{AccountID: account.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDocumentChunkReplace(t *testing.T) {
	gormDB := connect(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)

	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	require.NoError(t, uow.DocumentChunkRepository().DeleteAll(ctx))
	chunks := []*entity.DocumentChunk{
		{Id: uuid.New(), DocumentId: "doc", ChunkId: "doc#1", ChunkIndex: 1, Content: "b", Embedding: []float32{0, 1, 0}, IndexVersion: 1},
		{Id: uuid.New(), DocumentId: "doc", ChunkId: "doc#0", ChunkIndex: 0, Content: "a", Embedding: []float32{1, 0, 0}, IndexVersion: 1},
	}
	require.NoError(t, uow.DocumentChunkRepository().CreateBulk(ctx, chunks))

	stored, err := uow.DocumentChunkRepository().FindAll(ctx, specification.OrderBy{Field: "chunk_index"})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "doc#0", stored[0].ChunkId)
	assert.Equal(t, []float32{1, 0, 0}, stored[0].Embedding)
}
