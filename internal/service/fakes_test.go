package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/mailer"
	"docqa-be/internal/pkg/payment"
	"docqa-be/internal/pkg/quota"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/specification"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/pkg/chunking"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/events"
	"docqa-be/pkg/extract"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/rag/engine"

	"github.com/google/uuid"
)

// --- in-memory unit of work ---

type memStore struct {
	mu       sync.Mutex
	accounts []*entity.Account
	usage    []*entity.UsageRecord
	charges  []*entity.Charge
	chunks   []*entity.DocumentChunk
	commits  int
	failBulk error
}

type memFactory struct{ s *memStore }

func newMemFactory() (*memFactory, *memStore) {
	s := &memStore{}
	return &memFactory{s: s}, s
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUoW{s: f.s}
}

type memUoW struct{ s *memStore }

func (u *memUoW) Begin(ctx context.Context) error { return nil }
func (u *memUoW) Rollback() error                 { return nil }
func (u *memUoW) Commit() error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.commits++
	return nil
}

func (u *memUoW) AccountRepository() contract.AccountRepository             { return memAccounts{u.s} }
func (u *memUoW) UsageRepository() contract.UsageRepository                 { return memUsage{u.s} }
func (u *memUoW) ChargeRepository() contract.ChargeRepository               { return memCharges{u.s} }
func (u *memUoW) DocumentChunkRepository() contract.DocumentChunkRepository { return memChunks{u.s} }

// query is the subset of specifications the fakes understand.
type query struct {
	id        *uuid.UUID
	accountID *uuid.UUID
	email     string
	orderID   string
	order     *specification.OrderBy
	limit     int
	offset    int
}

func parse(specs []specification.Specification) query {
	var q query
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			q.id = &id
		case specification.ByAccountID:
			id := s.AccountID
			q.accountID = &id
		case specification.ByEmail:
			q.email = strings.ToLower(s.Email)
		case specification.ByOrderID:
			q.orderID = s.OrderID
		case specification.OrderBy:
			o := s
			q.order = &o
		case specification.Pagination:
			q.limit, q.offset = s.Limit, s.Offset
		}
	}
	return q
}

func page[T any](items []T, q query) []T {
	if q.offset >= len(items) {
		return nil
	}
	items = items[q.offset:]
	if q.limit > 0 && q.limit < len(items) {
		items = items[:q.limit]
	}
	return items
}

type memAccounts struct{ s *memStore }

func (r memAccounts) Create(ctx context.Context, a *entity.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.accounts = append(r.s.accounts, &cp)
	return nil
}

func (r memAccounts) Update(ctx context.Context, a *entity.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.accounts {
		if existing.Id == a.Id {
			cp := *a
			r.s.accounts[i] = &cp
			return nil
		}
	}
	return errors.New("account not stored")
}

func (r memAccounts) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parse(specs)
	for _, a := range r.s.accounts {
		if q.id != nil && a.Id != *q.id {
			continue
		}
		if q.email != "" && strings.ToLower(a.Email) != q.email {
			continue
		}
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

type memUsage struct{ s *memStore }

func (r memUsage) Create(ctx context.Context, u *entity.UsageRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *u
	r.s.usage = append(r.s.usage, &cp)
	return nil
}

func (r memUsage) Update(ctx context.Context, u *entity.UsageRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.usage {
		if existing.Id == u.Id {
			cp := *u
			r.s.usage[i] = &cp
			return nil
		}
	}
	return errors.New("usage record not stored")
}

func (r memUsage) filter(specs []specification.Specification) ([]*entity.UsageRecord, query) {
	q := parse(specs)
	var out []*entity.UsageRecord
	for _, u := range r.s.usage {
		if q.accountID != nil && u.AccountId != *q.accountID {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, q
}

func (r memUsage) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out, q := r.filter(specs)
	if q.order != nil && q.order.Field == "answered_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if q.order.Desc {
				return out[i].AnsweredAt.After(out[j].AnsweredAt)
			}
			return out[i].AnsweredAt.Before(out[j].AnsweredAt)
		})
	}
	return page(out, q), nil
}

func (r memUsage) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out, _ := r.filter(specs)
	return int64(len(out)), nil
}

type memCharges struct{ s *memStore }

func (r memCharges) Create(ctx context.Context, c *entity.Charge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.charges = append(r.s.charges, &cp)
	return nil
}

func (r memCharges) Update(ctx context.Context, c *entity.Charge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.charges {
		if existing.Id == c.Id {
			cp := *c
			r.s.charges[i] = &cp
			return nil
		}
	}
	return errors.New("charge not stored")
}

func (r memCharges) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Charge, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r memCharges) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Charge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parse(specs)
	var out []*entity.Charge
	for _, c := range r.s.charges {
		if q.id != nil && c.Id != *q.id {
			continue
		}
		if q.orderID != "" && c.OrderId != q.orderID {
			continue
		}
		if q.accountID != nil && c.AccountId != *q.accountID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return page(out, q), nil
}

type memChunks struct{ s *memStore }

func (r memChunks) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failBulk != nil {
		return r.s.failBulk
	}
	for _, c := range chunks {
		cp := *c
		r.s.chunks = append(r.s.chunks, &cp)
	}
	return nil
}

func (r memChunks) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.chunks = nil
	return nil
}

func (r memChunks) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.DocumentChunk, 0, len(r.s.chunks))
	for _, c := range r.s.chunks {
		cp := *c
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (r memChunks) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.chunks)), nil
}

// --- collaborators ---

const testServerKey = "server-key"

type fakeGateway struct {
	mu       sync.Mutex
	requests []payment.ChargeRequest
	err      error
}

func (g *fakeGateway) CreateCharge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.ChargeSession{
		Token:       "tok-" + req.OrderID,
		RedirectURL: "https://pay.example/" + req.OrderID,
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return signature == payment.Signature(orderID, statusCode, grossAmount, testServerKey)
}

type fakeQuota struct {
	mu    sync.Mutex
	limit int64
	day   string
	used  map[string]int64
	err   error
}

func newFakeQuota(limit int64) *fakeQuota {
	return &fakeQuota{limit: limit, day: "20260101", used: map[string]int64{}}
}

func (q *fakeQuota) key(accountID uuid.UUID) string {
	return accountID.String() + ":" + q.day
}

func (q *fakeQuota) Reserve(ctx context.Context, accountID uuid.UUID) (quota.Reservation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r := quota.Reservation{AccountID: accountID}
	if q.err != nil {
		return r, q.err
	}
	k := q.key(accountID)
	if q.used[k] >= q.limit {
		r.Used = q.used[k]
		return r, quota.ErrQuotaExceeded
	}
	q.used[k]++
	r.Key, r.Used = k, q.used[k]
	return r, nil
}

func (q *fakeQuota) Release(ctx context.Context, r quota.Reservation) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if r.Key != "" {
		q.used[r.Key]--
	}
	return nil
}

// usedToday reads the counter for the current fake day.
func (q *fakeQuota) usedToday(accountID uuid.UUID) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used[q.key(accountID)]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingMailer struct {
	mu       sync.Mutex
	to       []string
	receipts []mailer.Receipt
	err      error
}

func (m *recordingMailer) SendChargeReceipt(toEmail, toName string, receipt mailer.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, toEmail)
	m.receipts = append(m.receipts, receipt)
	return nil
}

type logEntry struct {
	level, module, message string
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, module, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level, module, message})
}

func (l *recordingLogger) Debug(module, message string, _ map[string]interface{}) {
	l.record("debug", module, message)
}
func (l *recordingLogger) Info(module, message string, _ map[string]interface{}) {
	l.record("info", module, message)
}
func (l *recordingLogger) Warn(module, message string, _ map[string]interface{}) {
	l.record("warn", module, message)
}
func (l *recordingLogger) Error(module, message string, _ map[string]interface{}) {
	l.record("error", module, message)
}
func (l *recordingLogger) Sync() error { return nil }

func (l *recordingLogger) has(level, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.message == message {
			return true
		}
	}
	return false
}

type recordingBus struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (b *recordingBus) Publish(ctx context.Context, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = append(b.payloads, payload)
	return nil
}

type echoGenerator struct{ err error }

func (g echoGenerator) Generate(ctx context.Context, question string, passages []rag.Passage) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if len(passages) == 0 {
		return "I don't know.", nil
	}
	return "From the document: " + passages[0].Text, nil
}

func newTestEngine(gen echoGenerator) *engine.Engine {
	return engine.New(
		extract.NewExtractor(),
		chunking.New(200, 20),
		embedding.NewLocalProvider(64),
		gen,
		engine.Config{TopK: 2},
		nil,
	)
}
