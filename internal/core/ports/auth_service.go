package ports

import (
	"context"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

// AuthService implements the public account operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}

// IdentityResolver loads the identity referenced by a verified token subject.
type IdentityResolver interface {
	Resolve(ctx context.Context, id string) (*domain.Identity, error)
}
