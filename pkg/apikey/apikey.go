// Package apikey mints the secret keys customers use to sign in.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

const (
	// Prefix marks a string as a secret key.
	Prefix = "sk_"
	// ByteLength is the amount of entropy per key.
	ByteLength = 32
	// Length is the full key length: prefix plus hex-encoded bytes.
	Length = len(Prefix) + 2*ByteLength
)

// Generate returns "sk_" followed by 64 lowercase hex characters drawn
// from crypto/rand.
func Generate() (string, error) {
	return generate(rand.Reader)
}

func generate(r io.Reader) (string, error) {
	buf := make([]byte, ByteLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("apikey: read random bytes: %w", err)
	}
	return Prefix + hex.EncodeToString(buf), nil
}

// LooksValid reports whether key has the shape Generate produces. It is a
// cheap pre-check before a store lookup, not an authenticity check.
func LooksValid(key string) bool {
	if len(key) != Length || !strings.HasPrefix(key, Prefix) {
		return false
	}
	for _, c := range key[len(Prefix):] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
