package attest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validAttestation() Attestation {
	return Attestation{
		EnclaveID: "fe31d1f8",
		RequestID: []byte("req-0001"),
		ClientKey: make([]byte, KeySize),
		ServerKey: make([]byte, KeySize),
		Host:      "discovery.example.org",
	}
}

func TestAttestationValid(t *testing.T) {
	att := validAttestation()
	require.NoError(t, att.Valid())
}

func TestAttestationInvalid(t *testing.T) {
	var tests = []struct {
		name   string
		mutate func(*Attestation)
	}{
		{"empty enclave id", func(a *Attestation) { a.EnclaveID = "" }},
		{"empty request id", func(a *Attestation) { a.RequestID = nil }},
		{"short client key", func(a *Attestation) { a.ClientKey = a.ClientKey[:16] }},
		{"short server key", func(a *Attestation) { a.ServerKey = a.ServerKey[:31] }},
		{"long client key", func(a *Attestation) { a.ClientKey = append(a.ClientKey, 0) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			att := validAttestation()
			test.mutate(&att)
			err := att.Valid()
			require.ErrorIs(t, err, ErrBadAttestation)
		})
	}
}
