package errors

import (
	"errors"
	"net/http"
)

// Repository and domain sentinels.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

// Wire error codes.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeWalletNotFound      = "WALLET_NOT_FOUND"
	CodeInvalidOTP          = "INVALID_OTP"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeDuplicateEntry      = "DUPLICATE_ENTRY"
	CodeEmailSendFailed     = "EMAIL_SEND_FAILED"
	CodeSMSSendFailed       = "SMS_SEND_FAILED"
	CodeMissingToken        = "MISSING_TOKEN"
	CodeInvalidTokenPayload = "INVALID_TOKEN_PAYLOAD"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeAuthError           = "AUTH_ERROR"
	CodeWalletInactive      = "WALLET_INACTIVE"
	CodeMissingAppID        = "MISSING_APP_ID"
	CodeInvalidAppID        = "INVALID_APP_ID"
	CodeAppInactive         = "APP_INACTIVE"
	CodeKeyGeneration       = "KEY_GENERATION_FAILED"
	CodeSigningFailed       = "SIGNING_FAILED"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeInternalError       = "INTERNAL_ERROR"
)

// AppError is the single structured failure carried to the HTTP boundary.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// AsAppError extracts an AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Validation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func WalletNotFound() *AppError {
	return NewAppError(http.StatusNotFound, CodeWalletNotFound, "Wallet not found", ErrNotFound)
}

func InvalidOTP() *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidOTP, "Invalid OTP", ErrInvalidInput)
}

func OTPExpired() *AppError {
	return NewAppError(http.StatusBadRequest, CodeOTPExpired, "OTP has expired", ErrInvalidInput)
}

func DuplicateEntry(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeDuplicateEntry, message, ErrAlreadyExists)
}

func DeliveryFailed(code, message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, code, message, err)
}

func Unauthorized(code, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, code, message, ErrUnauthorized)
}

func Forbidden(code, message string) *AppError {
	return NewAppError(http.StatusForbidden, code, message, ErrForbidden)
}

func NotFound(code, message string) *AppError {
	return NewAppError(http.StatusNotFound, code, message, ErrNotFound)
}

func BadRequest(code, message string) *AppError {
	return NewAppError(http.StatusBadRequest, code, message, ErrInvalidInput)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
}

func Internal(code, message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, code, message, err)
}
