package repositories

import (
	"errors"
	"strings"

	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"gorm.io/gorm"
)

// translateWriteError maps driver uniqueness failures to ErrAlreadyExists.
// The string checks cover connections opened without TranslateError.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerrors.ErrAlreadyExists
	}
	msg := err.Error()
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed") {
		return domainerrors.ErrAlreadyExists
	}
	return err
}

func translateReadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.ErrNotFound
	}
	return err
}
