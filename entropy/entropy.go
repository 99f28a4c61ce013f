// Package entropy supplies the random bytes consumed by the discovery
// protocol: query nonces, one-shot query keys and AEAD IVs.
package entropy

import (
	"crypto/rand"
	"io"
)

// GetRandom reads n bytes of randomness from whatever Reader is passed in, and
// returns those bytes as the requested randomness. A nil source, or a source
// that fails or short-reads, falls back to the crypto/rand generator.
func GetRandom(source io.Reader, n uint32) ([]byte, error) {
	if source == nil {
		source = rand.Reader
	}

	randomBytes := make([]byte, n)
	bytesRead, err := io.ReadFull(source, randomBytes)
	if err != nil || uint32(bytesRead) != n {
		// If the custom entropy source fails,
		// fallback to Golang crypto/rand generator.
		_, err := rand.Read(randomBytes)
		return randomBytes, err
	}
	return randomBytes, nil
}
