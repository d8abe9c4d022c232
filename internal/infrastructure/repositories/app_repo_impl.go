package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"custodial-wallet.backend/internal/domain/entities"
	"custodial-wallet.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppRepository implements developer application persistence.
type AppRepository struct {
	db *gorm.DB
}

func NewAppRepository(db *gorm.DB) *AppRepository {
	return &AppRepository{db: db}
}

func (r *AppRepository) Create(ctx context.Context, app *entities.App) error {
	urls, err := json.Marshal(app.RedirectURLs)
	if err != nil {
		return fmt.Errorf("failed to encode redirect urls: %w", err)
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := time.Now()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	m := &models.App{
		ID:               app.ID,
		AppID:            app.AppID,
		DeveloperID:      app.DeveloperID,
		Name:             app.Name,
		Description:      app.Description,
		IconURL:          app.IconURL,
		RedirectURLs:     string(urls),
		ClientSecretHash: app.ClientSecretHash,
		IsActive:         app.IsActive,
		CreatedAt:        app.CreatedAt,
		UpdatedAt:        app.UpdatedAt,
	}

	// Select every column so an explicit is_active=false is not replaced by the default.
	return translateWriteError(r.db.WithContext(ctx).Select("*").Create(m).Error)
}

func (r *AppRepository) GetByAppID(ctx context.Context, appID string) (*entities.App, error) {
	var m models.App
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).First(&m).Error; err != nil {
		return nil, translateReadError(err)
	}
	return toAppEntity(&m)
}

func toAppEntity(m *models.App) (*entities.App, error) {
	var urls []string
	if m.RedirectURLs != "" {
		if err := json.Unmarshal([]byte(m.RedirectURLs), &urls); err != nil {
			return nil, fmt.Errorf("failed to decode redirect urls for app %s: %w", m.AppID, err)
		}
	}
	return &entities.App{
		ID:               m.ID,
		AppID:            m.AppID,
		DeveloperID:      m.DeveloperID,
		Name:             m.Name,
		Description:      m.Description,
		IconURL:          m.IconURL,
		RedirectURLs:     urls,
		ClientSecretHash: m.ClientSecretHash,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}
