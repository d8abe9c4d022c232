package utils

import "github.com/google/uuid"

var newV7 = uuid.NewV7

// NewRecordID returns a time ordered UUID for primary keys, falling back to v4.
func NewRecordID() uuid.UUID {
	id, err := newV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
