package repositories

import (
	"context"

	"custodial-wallet.backend/internal/domain/entities"
)

// AppRepository reads and registers developer applications.
type AppRepository interface {
	Create(ctx context.Context, app *entities.App) error
	GetByAppID(ctx context.Context, appID string) (*entities.App, error)
}
