package cds

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/enclaved/discovery/attest"
	"github.com/enclaved/discovery/e164"
)

// DecodeResponse decrypts and parses one batch response. numbers must be the
// exact ordered sequence the query was built from: the decrypted identifier
// vector is positionally aligned to it.
//
// A response whose request id matches none of the supplied attestations is a
// trust violation (ErrProtocol). Failed tag verification or an impossible
// plaintext shape is ErrParse. No partial result is ever returned.
func DecodeResponse(resp Response, numbers []e164.Number, attestations map[string]attest.Attestation) (ContactSet, error) {
	att, err := attributeResponse(resp, attestations)
	if err != nil {
		return nil, err
	}

	plaintext, err := Open(att.ServerKey, resp.Ciphertext, resp.IV, resp.Tag, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening response from %q: %v", ErrParse, att.EnclaveID, err)
	}

	identifiers, err := DecodeIdentifiers(plaintext, len(numbers))
	if err != nil {
		return nil, err
	}
	if len(identifiers) != len(numbers) {
		return nil, fmt.Errorf("%w: decoded %d identifiers for %d numbers", ErrProtocol, len(identifiers), len(numbers))
	}

	contacts := make(ContactSet, len(numbers))
	for i, id := range identifiers {
		if id == uuid.Nil {
			// all-zero identifier: number is not registered
			continue
		}
		contacts.Add(Contact{UserID: id, Number: numbers[i]})
	}
	return contacts, nil
}

// DecodeIdentifiers reinterprets data as count identifiers of IdentifierSize
// bytes each, preserving order. The buffer must measure exactly
// count×IdentifierSize bytes.
func DecodeIdentifiers(data []byte, count int) ([]uuid.UUID, error) {
	if len(data) != count*IdentifierSize {
		return nil, fmt.Errorf("%w: identifier vector is %d bytes, want %d", ErrParse, len(data), count*IdentifierSize)
	}

	identifiers := make([]uuid.UUID, count)
	for i := 0; i < count; i++ {
		id, err := uuid.FromBytes(data[i*IdentifierSize : (i+1)*IdentifierSize])
		if err != nil {
			return nil, fmt.Errorf("%w: identifier %d: %v", ErrParse, i, err)
		}
		identifiers[i] = id
	}
	return identifiers, nil
}

func attributeResponse(resp Response, attestations map[string]attest.Attestation) (attest.Attestation, error) {
	for _, att := range attestations {
		if bytes.Equal(att.RequestID, resp.RequestID) {
			return att, nil
		}
	}
	return attest.Attestation{}, fmt.Errorf("%w: response request id matches no attested session", ErrProtocol)
}
