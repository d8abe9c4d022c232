package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SocialType is the channel a wallet identifier belongs to.
type SocialType string

const (
	SocialTypeEmail SocialType = "email"
	SocialTypeSMS   SocialType = "sms"
)

// Wallet is one custodial wallet scoped to an (app, identifier) pair.
// It never carries key material.
type Wallet struct {
	ID          uuid.UUID
	AppID       string
	SocialType  SocialType
	Email       *string
	PhoneNumber *string
	Address     string
	PublicKey   string
	UserData    string
	OAuthTokens *string
	IsActive    bool
	OTP         *string
	OTPExpiry   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WalletWithSecret is only loaded by code that must sign or persist keys.
type WalletWithSecret struct {
	Wallet
	EncryptedPrivateKey string
	EncryptionSalt      string
}

// WalletSummary is the response projection of a wallet.
type WalletSummary struct {
	ID          uuid.UUID       `json:"id"`
	AppID       string          `json:"appId"`
	Address     string          `json:"address"`
	PublicKey   string          `json:"publicKey"`
	SocialType  SocialType      `json:"socialType"`
	Email       string          `json:"email,omitempty"`
	PhoneNumber string          `json:"phoneNumber,omitempty"`
	UserData    json.RawMessage `json:"userData,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Identifier returns the channel identifier that scopes the wallet.
func (w *Wallet) Identifier() string {
	switch {
	case w.Email != nil:
		return *w.Email
	case w.PhoneNumber != nil:
		return *w.PhoneNumber
	}
	return ""
}

// HasSingleIdentifier reports whether exactly one of email and phone is set.
func (w *Wallet) HasSingleIdentifier() bool {
	return (w.Email != nil) != (w.PhoneNumber != nil)
}

// OTPExpired reports whether the pending challenge has elapsed at now.
// A missing expiry counts as expired.
func (w *Wallet) OTPExpired(now time.Time) bool {
	return w.OTPExpiry == nil || now.After(*w.OTPExpiry)
}

func (w *Wallet) Summary() *WalletSummary {
	s := &WalletSummary{
		ID:         w.ID,
		AppID:      w.AppID,
		Address:    w.Address,
		PublicKey:  w.PublicKey,
		SocialType: w.SocialType,
		IsActive:   w.IsActive,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
	if w.Email != nil {
		s.Email = *w.Email
	}
	if w.PhoneNumber != nil {
		s.PhoneNumber = *w.PhoneNumber
	}
	if w.UserData != "" && json.Valid([]byte(w.UserData)) {
		s.UserData = json.RawMessage(w.UserData)
	}
	return s
}

// EmailUserData is the identity claim stored for email wallets.
func EmailUserData(email string) string {
	b, _ := json.Marshal(map[string]string{"email": email})
	return string(b)
}

// PhoneUserData is the identity claim stored for SMS wallets.
func PhoneUserData(phone string) string {
	b, _ := json.Marshal(map[string]string{"phoneNumber": phone})
	return string(b)
}
