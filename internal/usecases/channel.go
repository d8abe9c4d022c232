package usecases

import (
	"custodial-wallet.backend/internal/domain/entities"
	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/pkg/utils"
)

// channel holds everything that differs between the email and SMS flows.
type channel struct {
	socialType     entities.SocialType
	validate       func(string) bool
	normalize      func(string) string
	invalidMessage string
	userData       func(string) string
	assign         func(w *entities.Wallet, identifier string)
	sendFailedCode string
	sendFailedMsg  string
	otpSentMsg     string
	otpResentMsg   string
	sendWelcomeSMS bool
}

var emailChannel = channel{
	socialType:     entities.SocialTypeEmail,
	validate:       utils.IsValidEmail,
	normalize:      utils.NormalizeEmail,
	invalidMessage: "Invalid email format",
	userData:       entities.EmailUserData,
	assign: func(w *entities.Wallet, identifier string) {
		w.Email = &identifier
	},
	sendFailedCode: domainerrors.CodeEmailSendFailed,
	sendFailedMsg:  "Failed to send OTP email",
	otpSentMsg:     "OTP sent to email for verification",
	otpResentMsg:   "OTP resent to email for verification",
}

var smsChannel = channel{
	socialType:     entities.SocialTypeSMS,
	validate:       utils.IsValidPhoneNumber,
	normalize:      utils.NormalizePhoneNumber,
	invalidMessage: "Invalid phone number format",
	userData:       entities.PhoneUserData,
	assign: func(w *entities.Wallet, identifier string) {
		w.PhoneNumber = &identifier
	},
	sendFailedCode: domainerrors.CodeSMSSendFailed,
	sendFailedMsg:  "Failed to send OTP SMS",
	otpSentMsg:     "OTP sent to phone number for verification",
	otpResentMsg:   "OTP resent to phone number for verification",
	sendWelcomeSMS: true,
}

func (c channel) name() string {
	return string(c.socialType)
}
