package util

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	IDFormatUUID = "uuid"
	IDFormatULID = "ulid"
)

// IDFunc returns a fresh message id.
type IDFunc func() string

// NewULID generates a new ULID string
func NewULID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewUUID generates a random (v4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// IDGenerator resolves a configured id format; empty => uuid.
func IDGenerator(format string) (IDFunc, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", IDFormatUUID:
		return NewUUID, nil
	case IDFormatULID:
		return NewULID, nil
	default:
		return nil, fmt.Errorf("unknown message id format %q", format)
	}
}
