// Package cds implements the client side of the private contact discovery
// protocol.
//
// A discovery query carries the caller's phone numbers encrypted under a
// one-shot symmetric key, together with one envelope per attested enclave:
// the query key re-encrypted under that enclave's session key, bound to the
// enclave's request id through the envelope's associated data. A 32 byte
// nonce is mixed into the query plaintext and a hash over the plaintext
// commits the client to the queried set before any enclave reveals a result.
//
// The enclave answers with an encrypted vector of 128-bit identifiers, one
// per queried number in query order. The all-zero identifier means the
// number is not registered; anything else is the matched user's stable id.
package cds

import "errors"

const (
	// NonceSize is the length of the random nonce mixed into the query
	// plaintext ahead of the encoded numbers.
	NonceSize = 32

	// QueryKeySize is the length of the one-shot symmetric key a query is
	// encrypted under. The key is fresh per query and never reused.
	QueryKeySize = 32

	// IdentifierSize is the length of one user identifier in the response
	// plaintext.
	IdentifierSize = 16
)

var (
	// ErrProtocol indicates a broken internal invariant or a response that
	// cannot be attributed to a known enclave session. It marks a bug or a
	// trust violation, not a transient condition; callers must not retry.
	ErrProtocol = errors.New("discovery protocol violation")

	// ErrParse indicates response material that failed authentication or
	// has an impossible shape. Retrying the same material cannot succeed
	// and silent retries could mask tampering.
	ErrParse = errors.New("discovery response unparseable")
)

// Query is one encrypted batch request.
//
// Ciphertext always measures 8×AddressCount + 32 bytes: the encoded numbers
// plus the query nonce. Envelopes carries the query key wrapped for every
// enclave the batch was attested against, keyed by enclave id.
type Query struct {
	AddressCount int
	Commitment   []byte
	Ciphertext   []byte
	IV           []byte
	Tag          []byte
	Envelopes    map[string]Envelope
}

// Envelope is the query key encrypted for one specific enclave. The request
// id doubles as the associated data of the seal, so an envelope replayed
// against a different enclave session fails authentication.
type Envelope struct {
	RequestID  []byte
	Ciphertext []byte
	IV         []byte
	Tag        []byte
}

// Response is the raw encrypted result for one batch, produced by exactly
// one enclave, attributed through its request id.
type Response struct {
	RequestID  []byte
	Ciphertext []byte
	IV         []byte
	Tag        []byte
}
