package cds

import (
	"crypto/sha256"
	"fmt"

	"github.com/enclaved/discovery/attest"
	"github.com/enclaved/discovery/e164"
	"github.com/enclaved/discovery/entropy"
)

// BuildQuery assembles the encrypted query for one batch of numbers against
// the attested enclave set. It never partially succeeds: any failure aborts
// the whole batch.
//
// Invalid numbers surface as errors wrapping e164.ErrInvalidNumber; every
// other failure wraps ErrProtocol.
func BuildQuery(numbers []e164.Number, attestations map[string]attest.Attestation) (*Query, error) {
	if len(attestations) == 0 {
		return nil, fmt.Errorf("%w: no attestations to build envelopes for", ErrProtocol)
	}
	for id, att := range attestations {
		if err := att.Valid(); err != nil {
			return nil, fmt.Errorf("%w: attestation %q: %v", ErrProtocol, id, err)
		}
	}

	nonce, err := entropy.GetRandom(nil, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: generating query nonce: %v", ErrProtocol, err)
	}

	encoded, err := e164.Encode(numbers)
	if err != nil {
		return nil, err
	}

	// The nonce rides inside the plaintext so the commitment below covers a
	// value the server cannot predict.
	plaintext := make([]byte, 0, len(nonce)+len(encoded))
	plaintext = append(plaintext, nonce...)
	plaintext = append(plaintext, encoded...)

	queryKey, err := entropy.GetRandom(nil, QueryKeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: generating query key: %v", ErrProtocol, err)
	}

	ciphertext, iv, tag, err := Seal(queryKey, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: sealing query: %v", ErrProtocol, err)
	}
	if want := e164.Width*len(numbers) + NonceSize; len(ciphertext) != want {
		return nil, fmt.Errorf("%w: query ciphertext is %d bytes, want %d", ErrProtocol, len(ciphertext), want)
	}

	envelopes := make(map[string]Envelope, len(attestations))
	for id, att := range attestations {
		envCiphertext, envIV, envTag, err := Seal(att.ClientKey, queryKey, att.RequestID)
		if err != nil {
			return nil, fmt.Errorf("%w: sealing envelope for %q: %v", ErrProtocol, id, err)
		}
		envelopes[id] = Envelope{
			RequestID:  att.RequestID,
			Ciphertext: envCiphertext,
			IV:         envIV,
			Tag:        envTag,
		}
	}

	commitment := sha256.Sum256(plaintext)

	return &Query{
		AddressCount: len(numbers),
		Commitment:   commitment[:],
		Ciphertext:   ciphertext,
		IV:           iv,
		Tag:          tag,
		Envelopes:    envelopes,
	}, nil
}
