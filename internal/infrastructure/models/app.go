package models

import (
	"time"

	"github.com/google/uuid"
)

type App struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	AppID            string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	DeveloperID      string    `gorm:"type:varchar(255);not null;index"`
	Name             string    `gorm:"type:varchar(255);not null"`
	Description      string    `gorm:"type:text"`
	IconURL          string    `gorm:"type:text"`
	RedirectURLs     string    `gorm:"column:redirect_urls;type:text;not null"`
	ClientSecretHash string    `gorm:"type:varchar(255);not null"`
	IsActive         bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (App) TableName() string {
	return "apps"
}
