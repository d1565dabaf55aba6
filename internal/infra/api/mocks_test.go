//go:build !integration

package api

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	red "wellness-companion/internal/infra/redis"
	"wellness-companion/internal/usecase"
)

var _ red.RedisClient = (*memRedis)(nil)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// memRedis is an in-memory stand-in for the redis client, enough for the
// session store and the rate limiter.
type memRedis struct {
	mu       sync.Mutex
	store    map[string]string
	counters map[string]int64
}

func newMemRedis() *memRedis {
	return &memRedis{store: make(map[string]string), counters: make(map[string]int64)}
}

func (m *memRedis) Ping(ctx context.Context) error { return nil }

func (m *memRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case string:
		m.store[key] = v
	case []byte:
		m.store[key] = string(v)
	default:
		m.store[key] = ""
	}
	return nil
}

func (m *memRedis) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store[key]
	if !ok {
		return "", red.Nil
	}
	return v, nil
}

func (m *memRedis) GetDel(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store[key]
	if !ok {
		return "", red.Nil
	}
	delete(m.store, key)
	return v, nil
}

func (m *memRedis) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (m *memRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.store, k)
		delete(m.counters, k)
	}
	return nil
}

func (m *memRedis) Close() error { return nil }

// fakeAccounts is a scripted AccountUseCase.
type fakeAccounts struct {
	user      *model.User
	signUpErr error
	signInErr error
	deleted   []string
}

func (f *fakeAccounts) SignUp(ctx context.Context, fullName, email, password, gender, birthdate string) (*model.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.user, nil
}

func (f *fakeAccounts) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.user, nil
}

func (f *fakeAccounts) CheckEmail(ctx context.Context, email string) error {
	if f.user != nil && f.user.Email == email {
		return nil
	}
	return domain.ErrNotFound
}

func (f *fakeAccounts) ResetPassword(ctx context.Context, email, newPassword string) error {
	return nil
}

func (f *fakeAccounts) Get(ctx context.Context, id string) (*model.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, domain.ErrNotFound
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeAccounts) List(ctx context.Context) ([]*model.User, error) {
	if f.user == nil {
		return nil, nil
	}
	return []*model.User{f.user}, nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, user *model.User) error   { return nil }
func (f *fakeAccounts) UpdateSettings(ctx context.Context, id string, s model.Settings) error {
	return nil
}

func (f *fakeAccounts) UpdateSecurity(ctx context.Context, id, currentPassword, newPassword string, sec model.Security) error {
	return nil
}

func (f *fakeAccounts) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeChat is a scripted ChatSessionUseCase that records calls.
type fakeChat struct {
	mu       sync.Mutex
	nextID   int
	openErr  error
	moodErr  error
	sendErr  error
	views    map[string]*usecase.SessionView
	sent     []string
	closed   []string
}

func newFakeChat() *fakeChat {
	return &fakeChat{views: make(map[string]*usecase.SessionView)}
}

func (f *fakeChat) Open(ctx context.Context, userID string) (*usecase.SessionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.nextID++
	v := &usecase.SessionView{
		SessionID: "sess-" + strconv.Itoa(f.nextID),
		Title:     usecase.DefaultTitle,
		Messages:  []model.Message{model.NewMessage(model.SenderAssistant, usecase.GreetingText)},
	}
	f.views[v.SessionID] = v
	return v, nil
}

func (f *fakeChat) SubmitMood(ctx context.Context, sessionID string, value int) (*usecase.SessionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moodErr != nil {
		return nil, f.moodErr
	}
	v, ok := f.views[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if value < model.MoodMin || value > model.MoodMax {
		return nil, domain.ErrMoodOutOfRange
	}
	v.Gated = true
	return v, nil
}

func (f *fakeChat) SendMessage(ctx context.Context, sessionID, text string) (*usecase.SessionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	v, ok := f.views[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !v.Gated {
		return nil, domain.ErrMoodNotRated
	}
	f.sent = append(f.sent, text)
	v.Messages = append(v.Messages,
		model.NewMessage(model.SenderUser, text),
		model.NewMessage(model.SenderAssistant, "ok"),
	)
	return v, nil
}

func (f *fakeChat) Transcript(ctx context.Context, sessionID string) (*usecase.SessionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.views[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return v, nil
}

func (f *fakeChat) Close(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.views[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(f.views, sessionID)
	f.closed = append(f.closed, sessionID)
	return nil
}

func (f *fakeChat) EvictIdle(maxIdle time.Duration) int { return 0 }

// fakeHistory is a scripted HistoryUseCase.
type fakeHistory struct {
	convs   []*model.Conversation
	deleted []string
	resumed []string
}

func (f *fakeHistory) Load(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return f.convs, nil
}

func (f *fakeHistory) Delete(ctx context.Context, id string) error {
	for _, c := range f.convs {
		if c.ID == id {
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeHistory) DeleteAll(ctx context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeHistory) Resume(ctx context.Context, userID, conversationID string) error {
	f.resumed = append(f.resumed, conversationID)
	return nil
}

type fakeMoods struct {
	entries []*model.MoodEntry
	insight string
}

func (f *fakeMoods) History(ctx context.Context, userID string) ([]*model.MoodEntry, string, error) {
	return f.entries, f.insight, nil
}

type fakeFeedback struct {
	items []*model.Feedback
}

func (f *fakeFeedback) Submit(ctx context.Context, userID string, rating int, comment string) (*model.Feedback, error) {
	fb, err := model.NewFeedback(userID, rating, comment)
	if err != nil {
		return nil, err
	}
	f.items = append(f.items, fb)
	return fb, nil
}

func (f *fakeFeedback) List(ctx context.Context) ([]*model.Feedback, error) {
	return f.items, nil
}
