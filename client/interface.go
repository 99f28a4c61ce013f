package client

import (
	"context"
	"time"

	"github.com/enclaved/discovery/attest"
	"github.com/enclaved/discovery/cds"
)

// Transport delivers one encrypted query to the discovery service and
// returns the raw encrypted response. The attestations for the batch are
// passed along so the transport can route and authenticate the request, e.g.
// pick the host and present the request ids as credentials.
//
// Transport errors are opaque to the orchestrator: they abort the owning
// batch and surface to the caller unchanged.
type Transport interface {
	Submit(ctx context.Context, query *cds.Query, attestations map[string]attest.Attestation) (cds.Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, query *cds.Query, attestations map[string]attest.Attestation) (cds.Response, error)

// Submit implements Transport.
func (f TransportFunc) Submit(ctx context.Context, query *cds.Query, attestations map[string]attest.Attestation) (cds.Response, error) {
	return f(ctx, query, attestations)
}

// Observer receives batch lifecycle notifications. Implementations must be
// safe for concurrent use; batches run in parallel.
type Observer interface {
	// BatchStarted fires when a batch begins attestation.
	BatchStarted(size int)
	// BatchSucceeded fires after a batch decoded cleanly. discovered counts
	// the registered numbers found in the batch.
	BatchSucceeded(size, discovered int, elapsed time.Duration)
	// BatchFailed fires when any stage of a batch fails.
	BatchFailed(size int, err error)
}

type multiObserver []Observer

func (m multiObserver) BatchStarted(size int) {
	for _, o := range m {
		o.BatchStarted(size)
	}
}

func (m multiObserver) BatchSucceeded(size, discovered int, elapsed time.Duration) {
	for _, o := range m {
		o.BatchSucceeded(size, discovered, elapsed)
	}
}

func (m multiObserver) BatchFailed(size int, err error) {
	for _, o := range m {
		o.BatchFailed(size, err)
	}
}
