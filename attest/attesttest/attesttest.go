// Package attesttest provides an in-memory attestation provider for tests.
//
// It performs a real key agreement, ephemeral X25519 against a static
// enclave identity expanded through HKDF-SHA256, so both sides of a test
// hold independently derived session keys, the way a remote attestation
// handshake leaves them. Nothing here verifies enclave measurements; that is
// the whole point of it living under attesttest.
package attesttest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/enclaved/discovery/attest"
	"github.com/enclaved/discovery/entropy"
)

const requestIDSize = 32

// Enclave is a fake enclave identity: a static X25519 key plus the session
// table a real enclave would keep per attested client.
type Enclave struct {
	id   string
	priv []byte
	pub  []byte

	mu       sync.Mutex
	sessions map[string]sessionKeys
}

type sessionKeys struct {
	client []byte
	server []byte
}

// NewEnclave creates a fake enclave with a fresh static identity key.
func NewEnclave(id string) (*Enclave, error) {
	priv, err := entropy.GetRandom(nil, curve25519.ScalarSize)
	if err != nil {
		return nil, err
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	return &Enclave{
		id:       id,
		priv:     priv,
		pub:      pub,
		sessions: make(map[string]sessionKeys),
	}, nil
}

// ID returns the enclave identifier.
func (e *Enclave) ID() string {
	return e.id
}

// PublicKey returns the enclave's static public key.
func (e *Enclave) PublicKey() []byte {
	out := make([]byte, len(e.pub))
	copy(out, e.pub)
	return out
}

// EstablishSession runs the enclave's half of the handshake: it derives the
// session keys from its static key and the client's ephemeral public key,
// and remembers them under the request id.
func (e *Enclave) EstablishSession(requestID, ephemeralPub []byte) error {
	shared, err := curve25519.X25519(e.priv, ephemeralPub)
	if err != nil {
		return err
	}
	client, server, err := deriveSessionKeys(shared, requestID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.sessions[string(requestID)] = sessionKeys{client: client, server: server}
	e.mu.Unlock()
	return nil
}

// SessionKeys looks up the keys the enclave derived for a request id.
func (e *Enclave) SessionKeys(requestID []byte) (client, server []byte, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[string(requestID)]
	if !ok {
		return nil, nil, false
	}
	return s.client, s.server, true
}

// Provider implements attest.Provider against a set of fake enclaves.
type Provider struct {
	host     string
	enclaves []*Enclave

	mu    sync.Mutex
	calls int
}

// NewProvider creates a provider attesting the given enclaves, all reachable
// at host.
func NewProvider(host string, enclaves ...*Enclave) *Provider {
	return &Provider{host: host, enclaves: enclaves}
}

// Calls reports how many attestation rounds were performed.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Attest performs the client half of the handshake against every enclave and
// returns the resulting session material.
func (p *Provider) Attest(ctx context.Context) (map[string]attest.Attestation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	atts := make(map[string]attest.Attestation, len(p.enclaves))
	for _, enclave := range p.enclaves {
		att, err := p.attestOne(enclave)
		if err != nil {
			return nil, fmt.Errorf("attest %s: %w", enclave.ID(), err)
		}
		atts[enclave.ID()] = att
	}

	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	return atts, nil
}

func (p *Provider) attestOne(enclave *Enclave) (attest.Attestation, error) {
	ephPriv, err := entropy.GetRandom(nil, curve25519.ScalarSize)
	if err != nil {
		return attest.Attestation{}, err
	}
	ephPub, err := curve25519.X25519(ephPriv, curve25519.Basepoint)
	if err != nil {
		return attest.Attestation{}, err
	}
	requestID, err := entropy.GetRandom(nil, requestIDSize)
	if err != nil {
		return attest.Attestation{}, err
	}

	shared, err := curve25519.X25519(ephPriv, enclave.PublicKey())
	if err != nil {
		return attest.Attestation{}, err
	}
	client, server, err := deriveSessionKeys(shared, requestID)
	if err != nil {
		return attest.Attestation{}, err
	}

	if err := enclave.EstablishSession(requestID, ephPub); err != nil {
		return attest.Attestation{}, err
	}

	return attest.Attestation{
		EnclaveID: enclave.ID(),
		RequestID: requestID,
		ClientKey: client,
		ServerKey: server,
		Host:      p.host,
	}, nil
}

// deriveSessionKeys expands the shared secret into the two directional
// session keys, bound to the request id through the HKDF salt.
func deriveSessionKeys(shared, requestID []byte) (client, server []byte, err error) {
	client = make([]byte, attest.KeySize)
	reader := hkdf.New(sha256.New, shared, requestID, []byte("discovery client key"))
	if _, err := io.ReadFull(reader, client); err != nil {
		return nil, nil, err
	}

	server = make([]byte, attest.KeySize)
	reader = hkdf.New(sha256.New, shared, requestID, []byte("discovery server key"))
	if _, err := io.ReadFull(reader, server); err != nil {
		return nil, nil, err
	}
	return client, server, nil
}
