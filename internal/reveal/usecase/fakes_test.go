package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// failingTx fails the transaction with the given number, counted from one, before running it.
type failingTx struct {
	mu     sync.Mutex
	calls  int
	failAt int
	err    error
}

func (f *failingTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	fail := f.calls == f.failAt
	f.mu.Unlock()
	if fail {
		return f.err
	}
	return fn(ctx)
}

// hookedPool counts the credential checks reaching the pool and runs before ahead of each one.
type hookedPool struct {
	pool   CryptoPool
	calls  atomic.Int32
	before func()
}

func (h *hookedPool) Do(ctx context.Context, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	h.calls.Add(1)
	if h.before != nil {
		h.before()
	}
	return h.pool.Do(ctx, fn)
}

type fakeRecordRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*recordsDomain.Record
	reveals map[uuid.UUID]int
}

func newFakeRecordRepository(records ...*recordsDomain.Record) *fakeRecordRepository {
	repo := &fakeRecordRepository{
		records: map[uuid.UUID]*recordsDomain.Record{},
		reveals: map[uuid.UUID]int{},
	}
	for _, record := range records {
		repo.records[record.ID] = record
	}
	return repo
}

func (f *fakeRecordRepository) Get(_ context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, recordsDomain.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRecordRepository) IncrementRevealCounters(_ context.Context, id, _ uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reveals[id]++
	return nil
}

func (f *fakeRecordRepository) revealCount(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reveals[id]
}

type fakeTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*revealDomain.Token
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{tokens: map[string]*revealDomain.Token{}}
}

func (f *fakeTokenRepository) Create(_ context.Context, token *revealDomain.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *token
	f.tokens[token.TokenHash] = &stored
	return nil
}

func (f *fakeTokenRepository) GetByTokenHash(_ context.Context, tokenHash string) (*revealDomain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[tokenHash]
	if !ok {
		return nil, revealDomain.ErrTokenNotFound
	}
	copied := *token
	return &copied, nil
}

func (f *fakeTokenRepository) Consume(
	_ context.Context,
	tokenHash string,
	subjectID uuid.UUID,
	now time.Time,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[tokenHash]
	if !ok || token.SubjectID != subjectID || token.ConsumedAt != nil || !token.ExpiresAt.After(now) {
		return false, nil
	}
	token.ConsumedAt = &now
	return true, nil
}

func (f *fakeTokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for hash, token := range f.tokens {
		if token.ExpiresAt.Before(before) {
			delete(f.tokens, hash)
			count++
		}
	}
	return count, nil
}

type attemptKey struct {
	subjectID uuid.UUID
	recordID  uuid.UUID
}

// fakeAttemptRepository holds its mutex across fn the way the SQL repositories hold the row lock.
type fakeAttemptRepository struct {
	mu       sync.Mutex
	counters map[attemptKey]*revealDomain.AttemptCounter
}

func newFakeAttemptRepository() *fakeAttemptRepository {
	return &fakeAttemptRepository{counters: map[attemptKey]*revealDomain.AttemptCounter{}}
}

func (f *fakeAttemptRepository) Update(
	_ context.Context,
	subjectID, recordID uuid.UUID,
	fn func(counter *revealDomain.AttemptCounter),
) (*revealDomain.AttemptCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := attemptKey{subjectID, recordID}
	counter, ok := f.counters[key]
	if !ok {
		counter = &revealDomain.AttemptCounter{SubjectID: subjectID, RecordID: recordID}
		f.counters[key] = counter
	}
	fn(counter)
	copied := *counter
	return &copied, nil
}

func (f *fakeAttemptRepository) inFlight(subjectID, recordID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if counter, ok := f.counters[attemptKey{subjectID, recordID}]; ok {
		return counter.InFlight
	}
	return 0
}

func (f *fakeAttemptRepository) failedCount(subjectID, recordID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if counter, ok := f.counters[attemptKey{subjectID, recordID}]; ok {
		return counter.FailedCount
	}
	return 0
}

type fakeAuditLogger struct {
	mu     sync.Mutex
	events []*auditDomain.Event
	failOn auditDomain.Action
}

func (f *fakeAuditLogger) Append(_ context.Context, event *auditDomain.Event) (*auditDomain.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && event.Action == f.failOn {
		return nil, errors.New("audit store unavailable")
	}
	f.events = append(f.events, event)
	return &auditDomain.AuditLog{
		ID:       uuid.Must(uuid.NewV7()),
		ActorID:  event.ActorID,
		Action:   event.Action,
		RecordID: event.RecordID,
		Outcome:  event.Outcome,
		Metadata: event.Metadata,
	}, nil
}

func (f *fakeAuditLogger) byAction(action auditDomain.Action) []*auditDomain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*auditDomain.Event
	for _, event := range f.events {
		if event.Action == action {
			out = append(out, event)
		}
	}
	return out
}
