package usecases

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"custodial-wallet.backend/internal/domain/entities"
	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/internal/domain/repositories"
	"custodial-wallet.backend/pkg/crypto"
	"custodial-wallet.backend/pkg/logger"
	"custodial-wallet.backend/pkg/utils"
	"go.uber.org/zap"
)

var (
	appIDGenerator  = crypto.GenerateAppID
	secretGenerator = crypto.GenerateClientSecret
	secretHasher    = crypto.HashSecret
)

type AppUsecase struct {
	apps repositories.AppRepository
}

func NewAppUsecase(apps repositories.AppRepository) *AppUsecase {
	return &AppUsecase{apps: apps}
}

// Register creates an active app with a fresh app id and client secret.
// Only the bcrypt hash of the secret is stored.
func (u *AppUsecase) Register(ctx context.Context, input *entities.RegisterAppInput) (*entities.RegisteredApp, error) {
	if strings.TrimSpace(input.DeveloperID) == "" {
		return nil, domainerrors.Validation("developer id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, domainerrors.Validation("name is required")
	}
	redirects, err := normalizeRedirectURLs(input.RedirectURLs)
	if err != nil {
		return nil, err
	}
	if input.IconURL != "" {
		if _, err := parseHTTPURL(input.IconURL); err != nil {
			return nil, domainerrors.Validation("icon url must be an absolute http(s) url")
		}
	}

	appID, err := appIDGenerator()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	secret, err := secretGenerator()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	hash, err := secretHasher(secret)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	app := &entities.App{
		ID:               utils.NewRecordID(),
		AppID:            appID,
		DeveloperID:      strings.TrimSpace(input.DeveloperID),
		Name:             strings.TrimSpace(input.Name),
		Description:      strings.TrimSpace(input.Description),
		IconURL:          input.IconURL,
		RedirectURLs:     redirects,
		ClientSecretHash: hash,
		IsActive:         true,
	}
	if err := u.apps.Create(ctx, app); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.DuplicateEntry("App id collision, retry registration")
		}
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "App registered",
		zap.String("app_id", app.AppID),
		zap.String("developer_id", app.DeveloperID),
	)
	return &entities.RegisteredApp{App: app, ClientSecret: secret}, nil
}

func normalizeRedirectURLs(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		u, err := parseHTTPURL(r)
		if err != nil {
			return nil, domainerrors.Validation("redirect url must be an absolute http(s) url: " + r)
		}
		s := u.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, domainerrors.Validation("at least one redirect url is required")
	}
	return out, nil
}

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New("unsupported url")
	}
	return u, nil
}
