// Package cdstest simulates the enclave side of the discovery protocol for
// tests: it unwraps real queries, checks the commitment, and answers with a
// sealed identifier vector, so client tests exercise the full protocol
// round-trip against honestly produced ciphertext.
package cdstest

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/enclaved/discovery/cds"
	"github.com/enclaved/discovery/e164"
)

// KeySource resolves session keys for a request id, the way an enclave holds
// them after the attestation handshake. *attesttest.Enclave implements it.
type KeySource interface {
	SessionKeys(requestID []byte) (client, server []byte, ok bool)
}

// Server processes discovery queries for one fake enclave.
type Server struct {
	id   string
	keys KeySource

	mu       sync.RWMutex
	registry map[uint64]uuid.UUID
}

// NewServer creates a server answering as the enclave with the given id,
// resolving session keys through keys.
func NewServer(id string, keys KeySource) *Server {
	return &Server{
		id:       id,
		keys:     keys,
		registry: make(map[uint64]uuid.UUID),
	}
}

// Register marks a number as belonging to the given user.
func (s *Server) Register(number e164.Number, user uuid.UUID) error {
	n, err := number.Uint64()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.registry[n] = user
	s.mu.Unlock()
	return nil
}

// Process answers one query: it unwraps the envelope addressed to this
// enclave, decrypts the numbers, and seals back one identifier per number in
// query order, all zeroes for numbers nobody registered.
func (s *Server) Process(query *cds.Query) (cds.Response, error) {
	env, ok := query.Envelopes[s.id]
	if !ok {
		return cds.Response{}, fmt.Errorf("no envelope for enclave %q", s.id)
	}
	clientKey, serverKey, ok := s.keys.SessionKeys(env.RequestID)
	if !ok {
		return cds.Response{}, fmt.Errorf("no session for request id %x", env.RequestID)
	}

	queryKey, err := cds.Open(clientKey, env.Ciphertext, env.IV, env.Tag, env.RequestID)
	if err != nil {
		return cds.Response{}, fmt.Errorf("unwrapping query key: %w", err)
	}
	plaintext, err := cds.Open(queryKey, query.Ciphertext, query.IV, query.Tag, nil)
	if err != nil {
		return cds.Response{}, fmt.Errorf("opening query: %w", err)
	}

	if want := cds.NonceSize + e164.Width*query.AddressCount; len(plaintext) != want {
		return cds.Response{}, fmt.Errorf("query plaintext is %d bytes, want %d", len(plaintext), want)
	}
	commitment := sha256.Sum256(plaintext)
	if !bytes.Equal(commitment[:], query.Commitment) {
		return cds.Response{}, fmt.Errorf("query commitment mismatch")
	}

	identifiers := make([]byte, 0, query.AddressCount*cds.IdentifierSize)
	encoded := plaintext[cds.NonceSize:]
	s.mu.RLock()
	for i := 0; i < query.AddressCount; i++ {
		n := binary.BigEndian.Uint64(encoded[i*e164.Width:])
		user := s.registry[n] // zero value is the not-registered sentinel
		identifiers = append(identifiers, user[:]...)
	}
	s.mu.RUnlock()

	ciphertext, iv, tag, err := cds.Seal(serverKey, identifiers, nil)
	if err != nil {
		return cds.Response{}, fmt.Errorf("sealing response: %w", err)
	}
	return cds.Response{
		RequestID:  env.RequestID,
		Ciphertext: ciphertext,
		IV:         iv,
		Tag:        tag,
	}, nil
}
