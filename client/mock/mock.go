// Package mock provides a mocked transport for testing discovery clients.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/enclaved/discovery/attest"
	"github.com/enclaved/discovery/cds"
)

// Transport provides a mocked transport interface.
type Transport struct {
	sync.Mutex
	// SubmitF handles each submitted query. Every submit fails while it is
	// nil.
	SubmitF func(ctx context.Context, query *cds.Query, attestations map[string]attest.Attestation) (cds.Response, error)
	// Queries records every submitted query in arrival order. Hold the
	// mutex when reading while submissions may still be in flight.
	Queries []*cds.Query
}

// Submit implements client.Transport.
func (m *Transport) Submit(ctx context.Context, query *cds.Query, attestations map[string]attest.Attestation) (cds.Response, error) {
	m.Lock()
	m.Queries = append(m.Queries, query)
	f := m.SubmitF
	m.Unlock()

	if f == nil {
		return cds.Response{}, errors.New("mock transport: no SubmitF configured")
	}
	return f(ctx, query, attestations)
}

// Submissions reports how many queries were submitted.
func (m *Transport) Submissions() int {
	m.Lock()
	defer m.Unlock()
	return len(m.Queries)
}
