// File: internal/infra/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"wellness-companion/internal/application"
	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/infra/logging"
	"wellness-companion/internal/infra/redis"
	"wellness-companion/internal/infra/speech"
	"wellness-companion/internal/usecase"
)

// Server exposes the REST and WebSocket surface of the service.
type Server struct {
	accounts usecase.AccountUseCase
	sessions usecase.ChatSessionUseCase
	history  usecase.HistoryUseCase
	moods    usecase.MoodUseCase
	feedback usecase.FeedbackUseCase
	speech   *speech.Service
	auth     *AuthManager
	state    *application.SessionManager
	limiter  *redis.RateLimiter
	log      *zerolog.Logger
}

func NewServer(
	accounts usecase.AccountUseCase,
	sessions usecase.ChatSessionUseCase,
	history usecase.HistoryUseCase,
	moods usecase.MoodUseCase,
	feedback usecase.FeedbackUseCase,
	speechSvc *speech.Service,
	auth *AuthManager,
	state *application.SessionManager,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		accounts: accounts,
		sessions: sessions,
		history:  history,
		moods:    moods,
		feedback: feedback,
		speech:   speechSvc,
		auth:     auth,
		state:    state,
		limiter:  limiter,
		log:      logger,
	}
}

// Router builds the chi route tree with the ambient middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return Chain(next, TraceID(s.log), Recover(s.log), RequestLog(s.log))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return Timeout(60 * time.Second)(next) })

		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/check-email", s.handleCheckEmail)
		r.Post("/auth/reset-password", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler { return RequireAuth(s.auth)(next) })

			r.Post("/auth/signout", s.handleSignOut)

			r.Post("/chat/open", s.handleChatOpen)
			r.Post("/chat/{sessionID}/mood", s.handleChatMood)
			r.With(func(next http.Handler) http.Handler {
				return RateLimit(s.limiter, "send_message", 20, time.Minute, s.log)(next)
			}).Post("/chat/{sessionID}/message", s.handleChatMessage)
			r.Get("/chat/{sessionID}", s.handleChatTranscript)
			r.Delete("/chat/{sessionID}", s.handleChatClose)
			r.Get("/chat/{sessionID}/speech", s.handleSpeech)

			r.Get("/conversations", s.handleHistory)
			r.Delete("/conversations/{id}", s.handleHistoryDelete)
			r.Post("/conversations/delete", s.handleHistoryBulkDelete)
			r.Post("/conversations/{id}/resume", s.handleResume)

			r.Get("/moods", s.handleMoodHistory)

			r.Post("/feedback", s.handleFeedbackSubmit)

			r.Get("/users/me", s.handleMe)
			r.Put("/users/me", s.handleUpdateProfile)
			r.Put("/users/me/settings", s.handleUpdateSettings)
			r.Put("/users/me/security", s.handleUpdateSecurity)
			r.Delete("/users/me", s.handleDeleteAccount)

			r.Group(func(r chi.Router) {
				r.Use(func(next http.Handler) http.Handler { return RequireAdmin()(next) })
				r.Get("/users", s.handleListUsers)
				r.Get("/feedback", s.handleFeedbackList)
			})
		})
	})

	return r
}

// ===== auth =====

type signUpRequest struct {
	FullName  string `json:"fullname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Gender    string `json:"gender"`
	Birthdate string `json:"birthdate"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	user, err := s.accounts.SignUp(r.Context(), req.FullName, req.Email, req.Password, req.Gender, req.Birthdate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, r, user, http.StatusCreated)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	user, err := s.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, r, user, http.StatusOK)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *model.User, status int) {
	token, jti, err := s.auth.Mint(w, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.state.Init(r.Context(), jti, user); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}{Token: token, User: user})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	chatID, err := s.state.Teardown(r.Context(), claims.ID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.writeError(w, r, err)
		return
	}
	if chatID != "" {
		if err := s.sessions.Close(r.Context(), chatID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("chat close on signout failed")
		}
	}
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.accounts.CheckEmail(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.accounts.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== chat =====

func (s *Server) handleChatOpen(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	view, err := s.sessions.Open(r.Context(), claims.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.state.AttachChat(r.Context(), claims.ID, view.SessionID); err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("attach chat to session failed")
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleChatMood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	view, err := s.sessions.SubmitMood(r.Context(), chi.URLParam(r, "sessionID"), req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	view, err := s.sessions.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleChatTranscript(w http.ResponseWriter, r *http.Request) {
	view, err := s.sessions.Transcript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleChatClose(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== history =====

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	convs, err := s.history.Load(r.Context(), claims.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	type previewItem struct {
		ID      string        `json:"id"`
		Date    time.Time     `json:"date"`
		Topic   string        `json:"topic"`
		Preview model.Preview `json:"preview"`
	}
	type dayGroup struct {
		Label         string        `json:"label"`
		Conversations []previewItem `json:"conversations"`
	}

	groups := usecase.GroupByDay(convs, time.Now())
	out := make([]dayGroup, 0, len(groups))
	for _, g := range groups {
		items := make([]previewItem, 0, len(g.Conversations))
		for _, c := range g.Conversations {
			items = append(items, previewItem{ID: c.ID, Date: c.Date, Topic: c.Topic, Preview: c.Preview()})
		}
		out = append(out, dayGroup{Label: g.Label, Conversations: items})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.history.DeleteAll(r.Context(), req.IDs); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	if err := s.history.Resume(r.Context(), claims.Email, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== moods =====

func (s *Server) handleMoodHistory(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	entries, insight, err := s.moods.History(r.Context(), claims.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Entries []*model.MoodEntry `json:"entries"`
		Insight string             `json:"insight"`
	}{Entries: entries, Insight: insight})
}

// ===== feedback =====

func (s *Server) handleFeedbackSubmit(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	fb, err := s.feedback.Submit(r.Context(), claims.Email, req.Rating, req.Comment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

func (s *Server) handleFeedbackList(w http.ResponseWriter, r *http.Request) {
	list, err := s.feedback.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ===== users =====

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	user, err := s.accounts.Get(r.Context(), claims.Subject)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	user, err := s.accounts.Get(r.Context(), claims.Subject)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		FullName  string `json:"fullname"`
		Gender    string `json:"gender"`
		Birthdate string `json:"birthdate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	user.Gender = req.Gender
	user.Birthdate = req.Birthdate
	if err := s.accounts.UpdateProfile(r.Context(), user); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req model.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.accounts.UpdateSettings(r.Context(), claims.Subject, req); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSecurity(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		TwoFactor       bool   `json:"twoFactor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sec := model.Security{TwoFactor: req.TwoFactor, LastPasswordChange: time.Now()}
	if err := s.accounts.UpdateSecurity(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword, sec); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	if err := s.accounts.Delete(r.Context(), claims.Subject); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.state.Teardown(r.Context(), claims.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("session teardown after account delete failed")
	}
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.accounts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// ===== helpers =====

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMoodOutOfRange),
		errors.Is(err, domain.ErrMoodNotRated):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrExchangeInProgress):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
