package application

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/freshbasket/storefront/internal/identity/domain"
)

var ErrInvalidRegistration = errors.New("username, email and password are required")

type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type Service struct {
	repo UserRepository
}

func NewService(repo UserRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return domain.User{}, ErrInvalidRegistration
	}

	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, domain.ErrUsernameTaken
	}
	taken, err = s.repo.EmailExists(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	return s.repo.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	})
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !actor.Admin {
		return nil, domain.ErrForbidden
	}
	return s.repo.List(ctx)
}

// SetAdmin grants or revokes the admin flag. Admins cannot change their own
// flag, which keeps at least one admin reachable.
func (s *Service) SetAdmin(ctx context.Context, actor domain.Actor, userID string, admin bool) error {
	if !actor.Admin {
		return domain.ErrForbidden
	}
	if actor.UserID == userID {
		return domain.ErrSelfDemotion
	}
	return s.repo.SetAdmin(ctx, userID, admin)
}
