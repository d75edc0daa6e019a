package domain

import (
	"errors"
	"time"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSelfDemotion       = errors.New("cannot change own admin status")
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Admin        bool
	CreatedAt    time.Time
}

// Actor identifies who is performing an operation. Authorization decisions
// take an explicit Actor instead of consulting ambient request state.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) Authenticated() bool { return a.UserID != "" }
