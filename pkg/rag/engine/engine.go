// Package engine orchestrates ingestion and question answering over the
// in-memory vector index.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/chunking"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/rag/generator"
	"docqa-be/pkg/rag/index"
	"docqa-be/pkg/rag/prompt"
)

const (
	DefaultTopK          = 4
	DefaultContextBudget = 6000

	logModule = "RAG_ENGINE"
)

type Extractor interface {
	Extract(data []byte, mediaType string) (string, error)
}

type Chunker interface {
	Chunk(text string) []chunking.Chunk
}

type Config struct {
	TopK          int
	ContextBudget int // runes of passage text handed to generation, <= 0 for no limit
}

// Document is an upload that already passed size and type checks.
type Document struct {
	ID        string
	Name      string
	Data      []byte
	MediaType string
}

// Source describes one passage that backed an answer.
type Source struct {
	ChunkID    string  `json:"chunk_id"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
	Truncated  bool    `json:"truncated"`
}

type Result struct {
	Answer       string
	Timestamp    time.Time
	IndexVersion uint64
	DocumentID   string
	NoContext    bool
	Sources      []Source
	States       []State
}

type Engine struct {
	extractor Extractor
	chunker   Chunker
	embedder  embedding.EmbeddingProvider
	generator generator.AnswerGenerator
	index     *index.VectorIndex
	cfg       Config
	logger    logger.ILogger
	tracer    trace.Tracer
	now       func() time.Time
}

func New(
	extractor Extractor,
	chunker Chunker,
	embedder embedding.EmbeddingProvider,
	gen generator.AnswerGenerator,
	cfg Config,
	log logger.ILogger,
) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Engine{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		generator: gen,
		index:     index.New(),
		cfg:       cfg,
		logger:    log,
		tracer:    otel.Tracer("docqa-be/pkg/rag/engine"),
		now:       time.Now,
	}
}

// Snapshot returns the live index version, or nil before the first build.
func (e *Engine) Snapshot() *index.Snapshot {
	return e.index.Current()
}

// Ready reports whether a document can be queried.
func (e *Engine) Ready() bool {
	return e.index.Ready()
}

// queryRun tracks one Answer call through the state machine.
type queryRun struct {
	e      *Engine
	ctx    context.Context
	states []State
	span   trace.Span
}

func (r *queryRun) enter(s State) {
	from := r.states[len(r.states)-1]
	if !CanTransition(from, s) {
		panic(fmt.Sprintf("engine: illegal transition %s -> %s", from, s))
	}
	if r.span != nil {
		r.span.End()
	}
	r.states = append(r.states, s)
	if !s.Terminal() {
		_, r.span = r.e.tracer.Start(r.ctx, "rag."+string(s))
	} else {
		r.span = nil
	}
	r.e.logger.Debug(logModule, "state transition", map[string]interface{}{
		"from": string(from),
		"to":   string(s),
	})
}

func (r *queryRun) fail(err error) error {
	if r.span != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
	}
	r.enter(StateFailed)
	r.e.logger.Warn(logModule, "query failed", map[string]interface{}{
		"kind":  string(rag.KindOf(err)),
		"error": err.Error(),
	})
	return err
}

// Answer runs the question through embedding, retrieval, context assembly and
// generation. The index version current at the start is used for the whole
// query, even if a newer build lands meanwhile. Errors carry a rag.Kind.
func (e *Engine) Answer(ctx context.Context, question string) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "rag.Answer")
	defer span.End()

	run := &queryRun{e: e, ctx: ctx, states: []State{StateReceived}}

	snap := e.index.Current()
	if snap == nil {
		return nil, run.fail(rag.ErrNotReady)
	}
	span.SetAttributes(
		attribute.Int64("rag.index_version", int64(snap.Version)),
		attribute.String("rag.document_id", snap.DocumentID),
	)

	run.enter(StateEmbedding)
	res, err := e.embedder.Generate(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, run.fail(rag.Wrap(rag.KindEmbedding, "question embedding", err))
	}

	run.enter(StateSearching)
	results, err := snap.Search(res.Embedding.Values, e.cfg.TopK)
	if err != nil {
		return nil, run.fail(rag.Wrap(rag.KindSearch, "similarity search", err))
	}

	run.enter(StateContextAssembled)
	passages := prompt.Assemble(results, e.cfg.ContextBudget)
	if len(passages) == 0 {
		e.logger.Warn(logModule, "no context retrieved", map[string]interface{}{
			"index_version": snap.Version,
			"index_size":    snap.Len(),
		})
	}

	run.enter(StateGenerating)
	answer, err := e.generator.Generate(ctx, question, passages)
	if err != nil {
		return nil, run.fail(rag.Wrap(rag.KindGeneration, "answer generation", err))
	}

	run.enter(StateAnswered)

	sources := make([]Source, len(passages))
	for i, p := range passages {
		sources[i] = Source{
			ChunkID:    p.ChunkID,
			ChunkIndex: p.ChunkIndex,
			Similarity: p.Similarity,
			Truncated:  p.Truncated,
		}
	}

	e.logger.Info(logModule, "query answered", map[string]interface{}{
		"index_version": snap.Version,
		"passages":      len(passages),
	})

	return &Result{
		Answer:       answer,
		Timestamp:    e.now().UTC(),
		IndexVersion: snap.Version,
		DocumentID:   snap.DocumentID,
		NoContext:    len(passages) == 0,
		Sources:      sources,
		States:       run.states,
	}, nil
}

// Ingest extracts, chunks and embeds doc, then publishes it as the new index
// version. Any failure leaves the previous version in place.
func (e *Engine) Ingest(ctx context.Context, doc Document) (*index.Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "rag.Ingest", trace.WithAttributes(
		attribute.String("rag.document_id", doc.ID),
		attribute.String("rag.media_type", doc.MediaType),
	))
	defer span.End()

	snap, err := e.ingest(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error(logModule, "ingestion failed", map[string]interface{}{
			"document_id": doc.ID,
			"kind":        string(rag.KindOf(err)),
			"error":       err.Error(),
		})
		return nil, err
	}

	e.logger.Info(logModule, "document indexed", map[string]interface{}{
		"document_id":   doc.ID,
		"document_name": doc.Name,
		"chunks":        snap.Len(),
		"index_version": snap.Version,
	})
	return snap, nil
}

func (e *Engine) ingest(ctx context.Context, doc Document) (*index.Snapshot, error) {
	text, err := e.extractor.Extract(doc.Data, doc.MediaType)
	if err != nil {
		return nil, rag.Wrap(rag.KindExtraction, "document text", err)
	}

	chunks := e.chunker.Chunk(text)
	entries := make([]index.Entry, 0, len(chunks))
	for _, c := range chunks {
		res, err := e.embedder.Generate(ctx, c.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, rag.Wrap(rag.KindEmbedding, fmt.Sprintf("chunk %d", c.Index), err)
		}
		entries = append(entries, index.Entry{
			ChunkID: ChunkID(doc.ID, c.Index),
			Chunk:   c,
			Vector:  res.Embedding.Values,
		})
	}

	snap, err := e.index.Build(index.BuildInput{
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		Entries:      entries,
	})
	if err != nil {
		return nil, rag.Wrap(rag.KindEmbedding, "inconsistent embeddings", err)
	}
	return snap, nil
}

// Restore publishes previously persisted entries without re-embedding them.
func (e *Engine) Restore(ctx context.Context, in index.BuildInput) (*index.Snapshot, error) {
	_, span := e.tracer.Start(ctx, "rag.Restore")
	defer span.End()

	snap, err := e.index.Build(in)
	if err != nil {
		return nil, rag.Wrap(rag.KindEmbedding, "stored embeddings", err)
	}
	e.logger.Info(logModule, "index restored", map[string]interface{}{
		"document_id":   in.DocumentID,
		"chunks":        snap.Len(),
		"index_version": snap.Version,
	})
	return snap, nil
}

// ChunkID names chunk index of a document.
func ChunkID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s#%d", documentID, chunkIndex)
}
