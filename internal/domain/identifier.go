package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// IDSize is the width of every stored identifier.
const IDSize = 16

// EncodeID returns the 16-byte storage form of id.
func EncodeID(id uuid.UUID) []byte {
	b := make([]byte, IDSize)
	copy(b, id[:])
	return b
}

// DecodeID is the inverse of EncodeID.
func DecodeID(b []byte) (uuid.UUID, error) {
	if len(b) != IDSize {
		return uuid.Nil, fmt.Errorf("identifier must be %d bytes, got %d", IDSize, len(b))
	}
	return uuid.FromBytes(b)
}

// MustDecodeID panics on a malformed identifier. Only for rows the store itself wrote.
func MustDecodeID(b []byte) uuid.UUID {
	id, err := DecodeID(b)
	if err != nil {
		panic(err)
	}
	return id
}

func NewID() uuid.UUID {
	return uuid.New()
}
