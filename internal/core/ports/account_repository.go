package ports

import (
	"context"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

// AccountRepository defines persistence for registered accounts.
// Emails are passed already normalized; a duplicate email on Create yields
// domain.ErrAccountExists and a missing account yields domain.ErrAccountNotFound.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
