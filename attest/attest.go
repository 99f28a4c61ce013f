// Package attest defines the trust material a remote attestation handshake
// yields, and the provider interface the discovery client consumes it
// through.
//
// Performing the attestation itself (verifying enclave measurements and
// certificate chains) is not this module's business. A Provider is
// expected to hand back only the session material the protocol needs: one
// Attestation per enclave, carrying the symmetric keys and the request id
// the enclave associated with the session.
package attest

import (
	"context"
	"errors"
	"fmt"
)

// KeySize is the required length in bytes of the client and server session keys.
const KeySize = 32

var (
	// ErrNoAttestations indicates a provider returned an empty attestation set.
	ErrNoAttestations = errors.New("no attestations returned")

	// ErrBadAttestation indicates attestation material with missing or
	// malformed fields.
	ErrBadAttestation = errors.New("malformed attestation")
)

// Attestation is the per-enclave session material obtained from a remote
// attestation handshake. The client key encrypts data the enclave will read;
// the server key decrypts data the enclave wrote. The request id is an opaque
// correlation token: it binds wrapped keys to this session and attributes
// responses back to it.
type Attestation struct {
	// EnclaveID identifies the enclave build this session was established
	// with, e.g. its measurement hash in string form.
	EnclaveID string
	// RequestID is the session correlation token, unique per attestation
	// within a batch.
	RequestID []byte
	// ClientKey is the symmetric key for client-to-enclave material.
	ClientKey []byte
	// ServerKey is the symmetric key for enclave-to-client material.
	ServerKey []byte
	// Host is the service endpoint this session lives on, for the transport
	// to route requests.
	Host string
}

// Valid checks the attestation carries usable session material.
func (a *Attestation) Valid() error {
	if a.EnclaveID == "" {
		return fmt.Errorf("%w: empty enclave id", ErrBadAttestation)
	}
	if len(a.RequestID) == 0 {
		return fmt.Errorf("%w: empty request id", ErrBadAttestation)
	}
	if len(a.ClientKey) != KeySize {
		return fmt.Errorf("%w: client key is %d bytes, want %d", ErrBadAttestation, len(a.ClientKey), KeySize)
	}
	if len(a.ServerKey) != KeySize {
		return fmt.Errorf("%w: server key is %d bytes, want %d", ErrBadAttestation, len(a.ServerKey), KeySize)
	}
	return nil
}

// Provider obtains attestations for the full enclave set served by a
// discovery deployment. The orchestrator calls it once per batch.
type Provider interface {
	// Attest returns one attestation per enclave, keyed by enclave id.
	// Errors are opaque to the caller and abort the owning batch.
	Attest(ctx context.Context) (map[string]Attestation, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (map[string]Attestation, error)

// Attest implements Provider.
func (f ProviderFunc) Attest(ctx context.Context) (map[string]Attestation, error) {
	return f(ctx)
}
