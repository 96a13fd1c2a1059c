package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/specification"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/chunking"
	"docqa-be/pkg/events"
	"docqa-be/pkg/extract"
	"docqa-be/pkg/rag/engine"
	"docqa-be/pkg/rag/index"

	"github.com/google/uuid"
)

const documentModule = "DOCUMENT"

var allowedExtensions = map[string]bool{
	"pdf": true,
	"txt": true,
	"md":  true,
}

// RagEngine is the query engine as seen by the services.
type RagEngine interface {
	Answer(ctx context.Context, question string) (*engine.Result, error)
	Ingest(ctx context.Context, doc engine.Document) (*index.Snapshot, error)
	Restore(ctx context.Context, in index.BuildInput) (*index.Snapshot, error)
	Snapshot() *index.Snapshot
}

type IDocumentService interface {
	Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	Restore(ctx context.Context) error
}

type documentService struct {
	engine           RagEngine
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   EventPublisher
	uploadFolder     string
	maxFileSize      int64
	logger           logger.ILogger
}

func NewDocumentService(
	ragEngine RagEngine,
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	uploadFolder string,
	maxFileSize int64,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		engine:           ragEngine,
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		uploadFolder:     uploadFolder,
		maxFileSize:      maxFileSize,
		logger:           log,
	}
}

func (s *documentService) Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(req.FileName), "."))
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedFileType
	}
	if s.maxFileSize > 0 && req.Size > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	fileName := SanitizeFileName(req.FileName)
	if err := s.save(fileName, req.Data); err != nil {
		return nil, err
	}

	docID := uuid.NewString()
	snap, err := s.engine.Ingest(ctx, engine.Document{
		ID:        docID,
		Name:      fileName,
		Data:      req.Data,
		MediaType: extract.MediaTypeFromFilename(fileName),
	})
	if err != nil {
		return nil, err
	}

	msgPayload := dto.PublishSnapshotMessage{
		Version:    snap.Version,
		DocumentId: docID,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		s.logger.Warn(documentModule, "failed to queue snapshot persistence", map[string]interface{}{
			"index_version": snap.Version,
			"error":         err.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.DocumentProcessed(docID, fileName, snap.Len(), snap.Version)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn(documentModule, "failed to publish DOCUMENT_PROCESSED", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.UploadDocumentResponse{
		DocumentId:   docID,
		FileName:     fileName,
		ChunkCount:   snap.Len(),
		IndexVersion: snap.Version,
	}, nil
}

func (s *documentService) save(fileName string, data []byte) error {
	if s.uploadFolder == "" {
		return nil
	}
	if err := os.MkdirAll(s.uploadFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create upload folder: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadFolder, fileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}
	return nil
}

// Restore republishes the last persisted document so a restart stays queryable.
func (s *documentService) Restore(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		s.logger.Info(documentModule, "no stored document to restore", nil)
		return nil
	}

	entries := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = index.Entry{
			ChunkID: c.ChunkId,
			Chunk: chunking.Chunk{
				Index: c.ChunkIndex,
				Start: c.StartOffset,
				End:   c.EndOffset,
				Text:  c.Content,
			},
			Vector: c.Embedding,
		}
	}

	_, err = s.engine.Restore(ctx, index.BuildInput{
		DocumentID:   chunks[0].DocumentId,
		DocumentName: chunks[0].DocumentName,
		Entries:      entries,
	})
	return err
}

// SanitizeFileName strips directories and replaces anything outside [A-Za-z0-9._-].
func SanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return "upload"
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if strings.HasPrefix(safe, ".") {
		safe = "_" + safe
	}
	return safe
}
