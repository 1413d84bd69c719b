package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const (
	MinKeyLength = 16
	MaxKeyLength = 128
	KeyPrefix    = "catalog:idempotency"
)

var (
	ErrKeyTooShort = errors.New("idempotency key must be at least 16 characters")
	ErrKeyTooLong  = errors.New("idempotency key must not exceed 128 characters")
	ErrKeyInvalid  = errors.New("idempotency key contains invalid characters")

	validKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// Validate checks length and alphabet of a client supplied key.
func Validate(key string) error {
	switch {
	case len(key) < MinKeyLength:
		return ErrKeyTooShort
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	case !validKeyPattern.MatchString(key):
		return ErrKeyInvalid
	}

	return nil
}

// BuildCacheKey scopes a client key to the route it was sent to. The key is
// client controlled, so it is hashed with sha256 rather than a fast hash.
func BuildCacheKey(method, path, idempotencyKey string) string {
	hash := sha256.Sum256([]byte(method + ":" + path + ":" + idempotencyKey))

	return KeyPrefix + ":" + hex.EncodeToString(hash[:])
}

// Fingerprint identifies a request body so that a replayed key carrying a
// different payload can be told apart from a genuine retry.
func Fingerprint(body []byte) string {
	return strconv.FormatUint(xxhash.Sum64(body), 16)
}
