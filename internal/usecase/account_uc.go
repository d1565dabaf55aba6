package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
	"wellness-companion/internal/infra/logging"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase covers sign-up/sign-in and the profile CRUD surface. It is
// thin glue around the user repository; the only logic of note is password
// hashing and the cascade on account removal.
type AccountUseCase interface {
	SignUp(ctx context.Context, fullName, email, password, gender, birthdate string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	CheckEmail(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdateSettings(ctx context.Context, id string, settings model.Settings) error
	UpdateSecurity(ctx context.Context, id, currentPassword, newPassword string, security model.Security) error
	// Delete removes the account and every conversation, mood entry and
	// feedback item it owns, in one transaction.
	Delete(ctx context.Context, id string) error
}

type accountUC struct {
	users    repository.UserRepository
	convs    repository.ConversationRepository
	moods    repository.MoodRepository
	feedback repository.FeedbackRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewAccountUseCase(
	users repository.UserRepository,
	convs repository.ConversationRepository,
	moods repository.MoodRepository,
	feedback repository.FeedbackRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *accountUC {
	return &accountUC{users: users, convs: convs, moods: moods, feedback: feedback, tm: tm, log: logger}
}

func (a *accountUC) SignUp(ctx context.Context, fullName, email, password, gender, birthdate string) (*model.User, error) {
	defer logging.TraceDuration(a.log, "AccountUC.SignUp")()

	if password == "" {
		return nil, domain.ErrInvalidArgument
	}
	if existing, err := a.users.FindByEmail(ctx, nil, email); err == nil && !existing.IsZero() {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := model.NewUser("", fullName, email, string(hash), gender, birthdate)
	if err != nil {
		return nil, err
	}
	if err := a.users.Save(ctx, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *accountUC) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	user, err := a.users.FindByEmail(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (a *accountUC) CheckEmail(ctx context.Context, email string) error {
	_, err := a.users.FindByEmail(ctx, nil, email)
	return err
}

func (a *accountUC) ResetPassword(ctx context.Context, email, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidArgument
	}
	if _, err := a.users.FindByEmail(ctx, nil, email); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return a.users.UpdatePassword(ctx, nil, email, string(hash), time.Now())
}

func (a *accountUC) Get(ctx context.Context, id string) (*model.User, error) {
	return a.users.FindByID(ctx, nil, id)
}

func (a *accountUC) List(ctx context.Context) ([]*model.User, error) {
	return a.users.FindAll(ctx, nil)
}

func (a *accountUC) UpdateProfile(ctx context.Context, user *model.User) error {
	if user.IsZero() {
		return domain.ErrInvalidArgument
	}
	return a.users.Save(ctx, nil, user)
}

func (a *accountUC) UpdateSettings(ctx context.Context, id string, settings model.Settings) error {
	return a.users.UpdateSettings(ctx, nil, id, settings)
}

func (a *accountUC) UpdateSecurity(ctx context.Context, id, currentPassword, newPassword string, security model.Security) error {
	user, err := a.users.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if newPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
			return domain.ErrInvalidCredentials
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		security.LastPasswordChange = time.Now()
		if err := a.users.UpdatePassword(ctx, nil, user.Email, string(hash), security.LastPasswordChange); err != nil {
			return err
		}
	}
	return a.users.UpdateSecurity(ctx, nil, id, security)
}

func (a *accountUC) Delete(ctx context.Context, id string) error {
	defer logging.TraceDuration(a.log, "AccountUC.Delete")()

	user, err := a.users.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}

	// Conversations, moods and feedback key on the email identifier; the
	// whole cascade commits or rolls back together.
	return a.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := a.convs.DeleteAllByUser(ctx, tx, user.Email); err != nil {
			return err
		}
		if err := a.moods.DeleteAllByUser(ctx, tx, user.Email); err != nil {
			return err
		}
		if err := a.feedback.DeleteAllByUser(ctx, tx, user.Email); err != nil {
			return err
		}
		return a.users.Delete(ctx, tx, id)
	})
}
