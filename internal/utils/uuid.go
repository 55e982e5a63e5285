package utils

import (
	"errors"
	"strings"

	"github.com/gofrs/uuid"
)

var ErrNilUUID = errors.New("uuid: nil UUID is not a valid identifier")

// ParseUUID rejects the nil UUID since no row is ever keyed by it.
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrNilUUID
	}
	return id, nil
}

func IsValidUUID(s string) bool {
	_, err := ParseUUID(s)
	return err == nil
}
