package ports

import (
	"context"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

// AccountRepository defines the persistence of stored accounts.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
