package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// IPHasher replaces raw client addresses with a keyed, truncated BLAKE2b digest.
// The same address always maps to the same value for one key.
type IPHasher struct {
	key []byte
}

func NewIPHasher() (*IPHasher, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate ip hashing key: %w", err)
	}
	return &IPHasher{key: key}, nil
}

func (h *IPHasher) Hash(ip string) string {
	if ip == "" {
		return ""
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// only possible for keys longer than 64 bytes
		panic(err)
	}
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}
