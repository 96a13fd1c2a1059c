package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docqa-be/internal/dto"
	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/rag/index"
	"docqa-be/pkg/retry"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const consumerModule = "SNAPSHOT_CONSUMER"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	engine     RagEngine
	policy     retry.Policy
	logger     logger.ILogger
}

// NewConsumerService persists every published index build to document_chunks.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	ragEngine RagEngine,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		engine:     ragEngine,
		policy: retry.Policy{
			MaxAttempts:     3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
		},
		logger: log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishSnapshotMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	snap := cs.engine.Snapshot()
	if snap == nil || snap.Version != payload.Version {
		cs.logger.Debug(consumerModule, "skipping superseded snapshot", map[string]interface{}{
			"index_version": payload.Version,
		})
		msg.Ack()
		return
	}

	_, err := retry.Do(ctx, cs.policy, func(ctx context.Context) (struct{}, error) {
		if err := cs.persist(ctx, snap); err != nil {
			return struct{}{}, fmt.Errorf("%w: %v", retry.ErrTransient, err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		cs.logger.Error(consumerModule, "failed to persist snapshot", map[string]interface{}{
			"index_version": snap.Version,
			"error":         err.Error(),
		})
		msg.Ack()
		return
	}

	cs.logger.Info(consumerModule, "snapshot persisted", map[string]interface{}{
		"index_version": snap.Version,
		"chunks":        snap.Len(),
	})
	msg.Ack()
}

func (cs *consumerService) persist(ctx context.Context, snap *index.Snapshot) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteAll(ctx); err != nil {
		return err
	}

	entries := snap.Entries()
	if len(entries) > 0 {
		chunks := make([]*entity.DocumentChunk, len(entries))
		for i, e := range entries {
			chunks[i] = &entity.DocumentChunk{
				Id:           uuid.New(),
				DocumentId:   snap.DocumentID,
				DocumentName: snap.DocumentName,
				ChunkId:      e.ChunkID,
				ChunkIndex:   e.Chunk.Index,
				StartOffset:  e.Chunk.Start,
				EndOffset:    e.Chunk.End,
				Content:      e.Chunk.Text,
				Embedding:    e.Vector,
				IndexVersion: snap.Version,
				CreatedAt:    snap.BuiltAt,
			}
		}
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
			return err
		}
	}

	return uow.Commit()
}
