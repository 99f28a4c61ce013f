package cds

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/enclaved/discovery/entropy"
)

const (
	ivSize  = 12
	tagSize = 16
)

// Seal encrypts plaintext with AES-256-GCM under a fresh random 12 byte IV
// and returns ciphertext, IV and the 16 byte authentication tag separately.
// The ciphertext is exactly as long as the plaintext.
func Seal(key, plaintext, additionalData []byte) (ciphertext, iv, tag []byte, err error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, nil, err
	}

	iv, err = entropy.GetRandom(nil, ivSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("generating iv: %w", err)
	}

	sealed := aead.Seal(nil, iv, plaintext, additionalData)
	ciphertext = sealed[:len(plaintext)]
	tag = sealed[len(plaintext):]
	return ciphertext, iv, tag, nil
}

// Open decrypts and authenticates a (ciphertext, iv, tag) triple produced by
// Seal, or by any AES-256-GCM implementation holding the tag separately.
// Tag verification is enforced; a failure returns an error and no plaintext.
func Open(key, ciphertext, iv, tag, additionalData []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != ivSize {
		return nil, fmt.Errorf("iv is %d bytes, want %d", len(iv), ivSize)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	return aead.Open(nil, iv, sealed, additionalData)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != QueryKeySize {
		return nil, fmt.Errorf("key is %d bytes, want %d", len(key), QueryKeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
