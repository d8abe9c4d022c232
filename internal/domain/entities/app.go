package entities

import (
	"time"

	"github.com/google/uuid"
)

// App is a registered developer application. Wallets are scoped to one app.
type App struct {
	ID               uuid.UUID
	AppID            string
	DeveloperID      string
	Name             string
	Description      string
	IconURL          string
	RedirectURLs     []string
	ClientSecretHash string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AppIdentity is what request handlers may know about the calling app.
type AppIdentity struct {
	AppID       string `json:"appId"`
	DeveloperID string `json:"developerId"`
	Name        string `json:"name"`
}

func (a *App) Identity() *AppIdentity {
	return &AppIdentity{
		AppID:       a.AppID,
		DeveloperID: a.DeveloperID,
		Name:        a.Name,
	}
}

// RegisterAppInput describes a new application.
type RegisterAppInput struct {
	DeveloperID  string
	Name         string
	Description  string
	IconURL      string
	RedirectURLs []string
}

// RegisteredApp carries the plaintext client secret, shown once at registration.
type RegisteredApp struct {
	App          *App
	ClientSecret string
}
