package cdstest_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/enclaved/discovery/attest/attesttest"
	"github.com/enclaved/discovery/cds"
	"github.com/enclaved/discovery/cds/cdstest"
	"github.com/enclaved/discovery/e164"
)

func TestFullProtocolRoundTrip(t *testing.T) {
	enclave, err := attesttest.NewEnclave("enclave-a")
	require.NoError(t, err)
	provider := attesttest.NewProvider("discovery.test", enclave)
	server := cdstest.NewServer(enclave.ID(), enclave)

	u1 := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	require.NoError(t, server.Register("+15551230001", u1))

	numbers := []e164.Number{"+15551230001", "+15551230002"}
	atts, err := provider.Attest(context.Background())
	require.NoError(t, err)

	query, err := cds.BuildQuery(numbers, atts)
	require.NoError(t, err)
	resp, err := server.Process(query)
	require.NoError(t, err)

	contacts, err := cds.DecodeResponse(resp, numbers, atts)
	require.NoError(t, err)
	require.Equal(t, 1, contacts.Len())
	require.True(t, contacts.Contains(cds.Contact{UserID: u1, Number: "+15551230001"}))
}

func TestProcessRejectsQueryForOtherEnclave(t *testing.T) {
	enclaveA, err := attesttest.NewEnclave("enclave-a")
	require.NoError(t, err)
	enclaveB, err := attesttest.NewEnclave("enclave-b")
	require.NoError(t, err)

	// Query attested only against A, processed by B.
	provider := attesttest.NewProvider("discovery.test", enclaveA)
	atts, err := provider.Attest(context.Background())
	require.NoError(t, err)
	query, err := cds.BuildQuery([]e164.Number{"+15551230001"}, atts)
	require.NoError(t, err)

	server := cdstest.NewServer(enclaveB.ID(), enclaveB)
	_, err = server.Process(query)
	require.Error(t, err)
}

func TestProcessRejectsTamperedQuery(t *testing.T) {
	enclave, err := attesttest.NewEnclave("enclave-a")
	require.NoError(t, err)
	provider := attesttest.NewProvider("discovery.test", enclave)
	server := cdstest.NewServer(enclave.ID(), enclave)

	atts, err := provider.Attest(context.Background())
	require.NoError(t, err)
	query, err := cds.BuildQuery([]e164.Number{"+15551230001"}, atts)
	require.NoError(t, err)

	query.Ciphertext[0] ^= 0x01
	_, err = server.Process(query)
	require.Error(t, err)
}

func TestRegisterRejectsInvalidNumber(t *testing.T) {
	enclave, err := attesttest.NewEnclave("enclave-a")
	require.NoError(t, err)
	server := cdstest.NewServer(enclave.ID(), enclave)
	require.Error(t, server.Register("not-a-number", uuid.Nil))
}
