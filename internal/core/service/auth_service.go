package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

// AuthService implements registration, login and identity resolution.
type AuthService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
	log    zerolog.Logger
	now    func() time.Time

	// dummyHash is compared against on unknown emails so login latency does
	// not reveal whether an account exists.
	dummyHash string
}

func NewAuthService(repo ports.AccountRepository, hasher ports.PasswordHasher, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	dummy, err := hasher.Hash("task-tracker-timing-guard")
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare timing guard hash")
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummy,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.NewValidationError("please provide name, email and password")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create account: %w", err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("account registered")
	return &domain.Session{Identity: created.Identity(), Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("please provide email and password")
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Debug().Str("user_id", account.ID).Msg("login succeeded")
	return &domain.Session{Identity: account.Identity(), Token: token}, nil
}

// Resolve loads the identity behind a verified token subject.
func (s *AuthService) Resolve(ctx context.Context, id string) (*domain.Identity, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	identity := account.Identity()
	return &identity, nil
}
