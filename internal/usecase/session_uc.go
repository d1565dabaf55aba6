package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
	"wellness-companion/internal/infra/logging"
	"wellness-companion/internal/infra/metrics"
)

// Compile-time check
var _ ChatSessionUseCase = (*chatSessionUC)(nil)

const (
	// GreetingText seeds every new session. On its own it never persists.
	GreetingText = "Hello! How are you feeling today? Please rate your mood:"

	// ApologyText substitutes the assistant turn when the remote call fails,
	// so the transcript is never left hanging.
	ApologyText = "I'm having trouble responding right now. Please try again."

	lowMoodFollowUp  = "I'm here to support you. Would you like to talk about what's bothering you?"
	highMoodFollowUp = "That's great! Would you like to share what's making you feel good today?"
)

var ErrExchangeInProgress = errors.New("a message exchange is already in progress")

// AssistantService prepares the provider prompt (user profile, recent
// transcript, token budget) and performs one request/response exchange.
// history carries the turns before the current message only; the
// implementation appends message itself.
type AssistantService interface {
	Reply(ctx context.Context, userID, message string, history []model.Message) (string, error)
}

// TaskRunner executes fire-and-forget persistence work off the request path.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}

// SessionView is the read model handed to the transport layer.
type SessionView struct {
	SessionID  string          `json:"sessionId"`
	Title      string          `json:"title"`
	Gated      bool            `json:"moodRated"`
	Processing bool            `json:"processing"`
	Messages   []model.Message `json:"messages"`
}

// ChatSessionUseCase drives the conversation session state machine: the mood
// gate, the message exchange and the persistence reconciler.
type ChatSessionUseCase interface {
	// Open starts a session for the user, consuming a hand-off payload when
	// one is waiting (resumed sessions start gated).
	Open(ctx context.Context, userID string) (*SessionView, error)
	SubmitMood(ctx context.Context, sessionID string, value int) (*SessionView, error)
	SendMessage(ctx context.Context, sessionID, text string) (*SessionView, error)
	Transcript(ctx context.Context, sessionID string) (*SessionView, error)
	Close(ctx context.Context, sessionID string) error
	// EvictIdle drops engines untouched for longer than maxIdle and reports
	// how many were removed.
	EvictIdle(maxIdle time.Duration) int
}

// moodGate is the one-way gate that blocks message exchange until an initial
// rating arrives. The zero value is ungated; Pass is irreversible.
type moodGate struct {
	ratedAt time.Time
}

func (g *moodGate) Gated() bool        { return !g.ratedAt.IsZero() }
func (g *moodGate) Pass(now time.Time) { g.ratedAt = now }

// sessionEngine owns the in-memory state of one live session. The durable
// copy belongs to the conversation store; lastPersisted is the most recent
// snapshot the store is known to have accepted.
type sessionEngine struct {
	mu         sync.Mutex
	id         string
	userID     string
	gate       moodGate
	messages   []model.Message
	processing bool
	lastActive time.Time

	// lastPersisted has its own lock so persistence tasks can advance the
	// snapshot without touching the engine lock their submitter holds.
	pmu           sync.Mutex
	lastPersisted *model.Conversation
}

func (e *sessionEngine) touch() { e.lastActive = time.Now() }

type chatSessionUC struct {
	mu      sync.RWMutex
	engines map[string]*sessionEngine

	convs     repository.ConversationRepository
	moods     repository.MoodRepository
	handoff   repository.HandoffSlot
	assistant AssistantService
	tasks     TaskRunner

	followUpDelay time.Duration
	log           *zerolog.Logger
}

func NewChatSessionUseCase(
	convs repository.ConversationRepository,
	moods repository.MoodRepository,
	handoff repository.HandoffSlot,
	assistant AssistantService,
	tasks TaskRunner,
	followUpDelay time.Duration,
	logger *zerolog.Logger,
) *chatSessionUC {
	return &chatSessionUC{
		engines:       make(map[string]*sessionEngine),
		convs:         convs,
		moods:         moods,
		handoff:       handoff,
		assistant:     assistant,
		tasks:         tasks,
		followUpDelay: followUpDelay,
		log:           logger,
	}
}

func (uc *chatSessionUC) Open(ctx context.Context, userID string) (*SessionView, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}

	e := &sessionEngine{id: uuid.NewString(), userID: userID}
	e.touch()

	prior, err := uc.handoff.Take(ctx, userID)
	switch {
	case err == nil && prior != nil:
		// Resumed sessions keep their id, their transcript and skip the gate.
		e.messages = append(e.messages, prior.Messages...)
		e.lastPersisted = prior.Clone()
		e.gate.Pass(prior.Date)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("hand-off slot read failed; starting fresh")
		fallthrough
	default:
		e.messages = append(e.messages, model.NewMessage(model.SenderAssistant, GreetingText))
	}

	uc.mu.Lock()
	uc.engines[e.id] = e
	uc.mu.Unlock()

	metrics.IncSessionOpened(e.gate.Gated())
	return uc.view(e), nil
}

func (uc *chatSessionUC) SubmitMood(ctx context.Context, sessionID string, value int) (*SessionView, error) {
	e, err := uc.engine(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.gate.Gated() {
		e.mu.Unlock()
		return nil, domain.ErrInvalidArgument
	}
	if value < model.MoodMin || value > model.MoodMax {
		e.mu.Unlock()
		return nil, domain.ErrMoodOutOfRange
	}

	msg := model.NewMessage(model.SenderUser, strconv.Itoa(value))
	e.messages = append(e.messages, msg)
	e.gate.Pass(msg.Timestamp)
	e.touch()
	metrics.IncMoodRating(value < model.MoodThreshold)
	uc.reconcile(e)
	view := uc.viewLocked(e)
	e.mu.Unlock()

	// The rating is persisted once per session, tagged with the rating
	// message itself as the note. Failures are logged, never surfaced.
	entry, err := model.NewMoodEntry(e.userID, value, msg.Text)
	if err == nil {
		uc.submit(func(taskCtx context.Context) error {
			if err := uc.moods.Save(taskCtx, nil, entry); err != nil {
				metrics.IncPersistFailure("mood")
				uc.log.Error().Err(err).Str("user_id", e.userID).Msg("mood save failed")
				return err
			}
			metrics.IncPersistWrite("mood")
			return nil
		})
	}

	followUp := "Thank you for sharing. I see your mood is " + strconv.Itoa(value) + "/10. "
	if value < model.MoodThreshold {
		followUp += lowMoodFollowUp
	} else {
		followUp += highMoodFollowUp
	}
	uc.after(uc.followUpDelay, func() { uc.appendAssistant(e, followUp) })

	return view, nil
}

func (uc *chatSessionUC) SendMessage(ctx context.Context, sessionID, text string) (*SessionView, error) {
	e, err := uc.engine(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if !e.gate.Gated() {
		e.mu.Unlock()
		return nil, domain.ErrMoodNotRated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.mu.Unlock()
		return nil, domain.ErrInvalidArgument
	}
	if e.processing {
		e.mu.Unlock()
		return nil, ErrExchangeInProgress
	}
	e.processing = true
	// Snapshot the prior turns before appending: the assistant receives the
	// current text separately and must not see it in the history too.
	history := make([]model.Message, len(e.messages))
	copy(history, e.messages)
	e.messages = append(e.messages, model.NewMessage(model.SenderUser, text))
	e.touch()
	uc.reconcile(e)
	e.mu.Unlock()

	defer logging.TraceDuration(uc.log, "ChatSessionUC.SendMessage")()

	start := time.Now()
	reply, err := uc.assistant.Reply(ctx, e.userID, text, history)
	metrics.ObserveAssistantCall(time.Since(start), err == nil)
	if err != nil {
		uc.log.Error().Err(err).Str("session_id", sessionID).Msg("assistant call failed")
		reply = ApologyText
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.processing = false
	e.messages = append(e.messages, model.NewMessage(model.SenderAssistant, reply))
	e.touch()
	uc.reconcile(e)
	return uc.viewLocked(e), nil
}

func (uc *chatSessionUC) Transcript(ctx context.Context, sessionID string) (*SessionView, error) {
	e, err := uc.engine(sessionID)
	if err != nil {
		return nil, err
	}
	return uc.view(e), nil
}

func (uc *chatSessionUC) Close(ctx context.Context, sessionID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.engines[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(uc.engines, sessionID)
	return nil
}

func (uc *chatSessionUC) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	n := 0
	for id, e := range uc.engines {
		e.mu.Lock()
		idle := e.lastActive.Before(cutoff) && !e.processing
		e.mu.Unlock()
		if idle {
			delete(uc.engines, id)
			n++
		}
	}
	return n
}

// appendAssistant adds a locally produced assistant turn (mood follow-up,
// speech failure notice) and reconciles.
func (uc *chatSessionUC) appendAssistant(e *sessionEngine, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, model.NewMessage(model.SenderAssistant, text))
	e.touch()
	uc.reconcile(e)
}

// reconcile pushes the accumulated transcript to the conversation store.
// Callers must hold e.mu. The write is skipped until the session has more
// than the seed greeting, and whenever the store already holds at least as
// many messages; a successful write advances lastPersisted, a failed one
// leaves it so the next success resends the full state.
func (uc *chatSessionUC) reconcile(e *sessionEngine) {
	if len(e.messages) <= 1 {
		return
	}
	e.pmu.Lock()
	last := e.lastPersisted
	e.pmu.Unlock()
	if last != nil && len(e.messages) <= len(last.Messages) {
		metrics.IncPersistSkip()
		return
	}

	id := uuid.NewString()
	if last != nil {
		id = last.ID
	}
	msgs := make([]model.Message, len(e.messages))
	copy(msgs, e.messages)
	candidate := model.NewConversation(id, e.userID, SynthesizeTitle(msgs), msgs)

	uc.submit(func(taskCtx context.Context) error {
		if err := uc.convs.Upsert(taskCtx, nil, candidate); err != nil {
			metrics.IncPersistFailure("conversation")
			uc.log.Error().Err(err).Str("conversation_id", candidate.ID).Msg("conversation save failed")
			return err
		}
		metrics.IncPersistWrite("conversation")
		e.pmu.Lock()
		if e.lastPersisted == nil || len(candidate.Messages) > len(e.lastPersisted.Messages) {
			e.lastPersisted = candidate
		}
		e.pmu.Unlock()
		return nil
	})
}

func (uc *chatSessionUC) engine(id string) (*sessionEngine, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	e, ok := uc.engines[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return e, nil
}

func (uc *chatSessionUC) view(e *sessionEngine) *SessionView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return uc.viewLocked(e)
}

func (uc *chatSessionUC) viewLocked(e *sessionEngine) *SessionView {
	msgs := make([]model.Message, len(e.messages))
	copy(msgs, e.messages)
	return &SessionView{
		SessionID:  e.id,
		Title:      SynthesizeTitle(msgs),
		Gated:      e.gate.Gated(),
		Processing: e.processing,
		Messages:   msgs,
	}
}

func (uc *chatSessionUC) submit(task func(ctx context.Context) error) {
	if err := uc.tasks.Submit(task); err != nil {
		uc.log.Error().Err(err).Msg("task submit failed")
	}
}

// after runs fn on a timer; a non-positive delay runs it inline, which keeps
// tests deterministic.
func (uc *chatSessionUC) after(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	time.AfterFunc(d, fn)
}
