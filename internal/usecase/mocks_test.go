//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// memConvRepo is a small in-memory conversation store used by unit tests.
type memConvRepo struct {
	mu          sync.Mutex
	store       map[string]*model.Conversation
	upsertCalls int
	upsertErr   error
	deleteErr   error
}

func newMemConvRepo() *memConvRepo {
	return &memConvRepo{store: make(map[string]*model.Conversation)}
}

func (m *memConvRepo) Upsert(ctx context.Context, qx repository.Tx, conv *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.store[conv.ID] = conv.Clone()
	return nil
}

func (m *memConvRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (m *memConvRepo) FindAllByUser(ctx context.Context, qx repository.Tx, userID string) ([]*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Conversation
	for _, c := range m.store {
		if c.UserID == userID {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (m *memConvRepo) Delete(ctx context.Context, qx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *memConvRepo) DeleteAllByUser(ctx context.Context, qx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.store {
		if c.UserID == userID {
			delete(m.store, id)
		}
	}
	return nil
}

func (m *memConvRepo) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertCalls
}

func (m *memConvRepo) get(id string) *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store[id]
}

func (m *memConvRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

type memMoodRepo struct {
	mu      sync.Mutex
	entries []*model.MoodEntry
	saveErr error
}

func newMemMoodRepo() *memMoodRepo {
	return &memMoodRepo{}
}

func (m *memMoodRepo) Save(ctx context.Context, qx repository.Tx, entry *model.MoodEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memMoodRepo) FindAllByUser(ctx context.Context, qx repository.Tx, userID string) ([]*model.MoodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.MoodEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memMoodRepo) DeleteAllByUser(ctx context.Context, qx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memMoodRepo) all() []*model.MoodEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.MoodEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

type memUserRepo struct {
	mu    sync.Mutex
	store map[string]*model.User // keyed by id
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, qx repository.Tx, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.store[user.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, qx repository.Tx, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindAll(ctx context.Context, qx repository.Tx) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserRepo) Delete(ctx context.Context, qx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *memUserRepo) UpdateSettings(ctx context.Context, qx repository.Tx, id string, settings model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Settings = settings
	return nil
}

func (m *memUserRepo) UpdateSecurity(ctx context.Context, qx repository.Tx, id string, security model.Security) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Security = security
	return nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, qx repository.Tx, email, passwordHash string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.Email == email {
			u.PasswordHash = passwordHash
			u.Security.LastPasswordChange = changedAt
			return nil
		}
	}
	return domain.ErrNotFound
}

type memFeedbackRepo struct {
	mu      sync.Mutex
	entries []*model.Feedback
}

func newMemFeedbackRepo() *memFeedbackRepo {
	return &memFeedbackRepo{}
}

func (m *memFeedbackRepo) Save(ctx context.Context, qx repository.Tx, entry *model.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memFeedbackRepo) FindAll(ctx context.Context, qx repository.Tx) ([]*model.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Feedback, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memFeedbackRepo) DeleteAllByUser(ctx context.Context, qx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// fakeHandoff keeps the single-use slot semantics in process memory.
type fakeHandoff struct {
	mu      sync.Mutex
	slots   map[string]*model.Conversation
	takeErr error
}

func newFakeHandoff() *fakeHandoff {
	return &fakeHandoff{slots: make(map[string]*model.Conversation)}
}

func (f *fakeHandoff) Put(ctx context.Context, userID string, conv *model.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[userID] = conv.Clone()
	return nil
}

func (f *fakeHandoff) Take(ctx context.Context, userID string) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takeErr != nil {
		return nil, f.takeErr
	}
	c, ok := f.slots[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(f.slots, userID)
	return c, nil
}

// fakeAssistant returns a canned reply and records the last exchange.
type fakeAssistant struct {
	mu          sync.Mutex
	reply       string
	err         error
	lastMessage string
	lastHistory []model.Message
	calls       int
}

func (f *fakeAssistant) Reply(ctx context.Context, userID, message string, history []model.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastMessage = message
	f.lastHistory = history
	if f.err != nil {
		return "", f.err
	}
	if f.reply == "" {
		return "ok", nil
	}
	return f.reply, nil
}

// syncRunner executes submitted tasks inline, which makes the persistence
// path deterministic in tests.
type syncRunner struct {
	mu   sync.Mutex
	errs []error
}

func (r *syncRunner) Submit(task func(ctx context.Context) error) error {
	err := task(context.Background())
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	return nil
}

// fakeTxManager runs the callback without a real transaction.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	f.calls++
	return fn(ctx, repository.NoTX)
}
