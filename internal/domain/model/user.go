package model

import (
	"time"

	"github.com/google/uuid"

	"wellness-companion/internal/domain"
)

// Settings holds per-user presentation preferences.
type Settings struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{Language: "English", Theme: "light"}
}

// Security holds per-user account-security state.
type Security struct {
	TwoFactor          bool      `json:"twoFactor"`
	LastPasswordChange time.Time `json:"lastPasswordChange"`
}

// User is a registered account. Conversations and mood entries reference the
// user by email, which doubles as the client-facing user identifier.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Gender       string    `json:"gender"`
	Birthdate    string    `json:"birthdate"` // ISO date, may be empty
	JoinDate     time.Time `json:"joinDate"`
	IsAdmin      bool      `json:"isAdmin"`
	Settings     Settings  `json:"settings"`
	Security     Security  `json:"security"`
}

func NewUser(id, fullName, email, passwordHash, gender, birthdate string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if fullName == "" || email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		Gender:       gender,
		Birthdate:    birthdate,
		JoinDate:     now,
		IsAdmin:      false,
		Settings:     DefaultSettings(),
		Security:     Security{LastPasswordChange: now},
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// Age derives whole years from the stored birthdate, 0 when unknown.
func (u *User) Age(now time.Time) int {
	if u.Birthdate == "" {
		return 0
	}
	birth, err := time.Parse("2006-01-02", u.Birthdate)
	if err != nil {
		return 0
	}
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
