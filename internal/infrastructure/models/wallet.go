package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet rows are unique per (app_id, address), (app_id, email) and
// (app_id, phone_number). NULL identifiers never collide.
type Wallet struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AppID               string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_wallets_app_address,priority:1;uniqueIndex:idx_wallets_app_email,priority:1;uniqueIndex:idx_wallets_app_phone,priority:1"`
	SocialType          string     `gorm:"type:varchar(20);not null"`
	Email               *string    `gorm:"type:varchar(255);uniqueIndex:idx_wallets_app_email,priority:2"`
	PhoneNumber         *string    `gorm:"type:varchar(32);uniqueIndex:idx_wallets_app_phone,priority:2"`
	Address             string     `gorm:"type:varchar(42);not null;uniqueIndex:idx_wallets_app_address,priority:2;index"`
	PublicKey           string     `gorm:"type:text;not null"`
	EncryptedPrivateKey string     `gorm:"type:text;not null"`
	EncryptionSalt      string     `gorm:"type:varchar(64);not null"`
	UserData            string     `gorm:"type:text"`
	OAuthTokens         *string    `gorm:"column:oauth_tokens;type:text"`
	IsActive            bool       `gorm:"not null;default:false"`
	OTP                 *string    `gorm:"column:otp;type:varchar(6)"`
	OTPExpiry           *time.Time `gorm:"column:otp_expiry"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Wallet) TableName() string {
	return "wallets"
}
