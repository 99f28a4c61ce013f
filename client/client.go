package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/enclaved/discovery/attest"
	"github.com/enclaved/discovery/log"
)

// MaxBatchSize is the largest number of contacts the discovery service
// accepts in a single query. Larger contact lists are split.
const MaxBatchSize = 2048

// Client runs the discovery protocol against an attested enclave fleet. It
// is safe for concurrent use; every lookup attests and encrypts its batches
// independently.
type Client struct {
	transport Transport
	attester  attest.Provider
	// cache is the session cache behind attester when WithAttestTTL is
	// set, kept so a failed lookup can drop it.
	cache     *attest.CachingProvider
	batchSize int
	log       log.Logger
	observers multiObserver
}

// New creates a discovery client submitting queries through transport, with
// sessions established by attester once per batch.
func New(transport Transport, attester attest.Provider, options ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("no transport specified")
	}
	if attester == nil {
		return nil, errors.New("no attestation provider specified")
	}

	cfg := clientConfig{
		batchSize: MaxBatchSize,
		log:       log.DefaultLogger(),
	}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.prometheus != nil {
		po, err := newPrometheusObserver(cfg.prometheus)
		if err != nil {
			return nil, err
		}
		cfg.observers = append(cfg.observers, po)
	}

	var cache *attest.CachingProvider
	if cfg.attestTTL > 0 {
		var err error
		cache, err = attest.NewCachingProvider(attester, cfg.attestTTL, nil)
		if err != nil {
			return nil, err
		}
		attester = cache
	}

	return &Client{
		transport: transport,
		attester:  attester,
		cache:     cache,
		batchSize: cfg.batchSize,
		log:       cfg.log,
		observers: cfg.observers,
	}, nil
}

type clientConfig struct {
	// batchSize is the number of contacts submitted per query.
	batchSize int
	// attestTTL is how long attested sessions are reused; zero attests
	// every batch afresh.
	attestTTL time.Duration
	// customized client log.
	log log.Logger
	// observers receive batch lifecycle notifications.
	observers multiObserver
	// prometheus is an interface to a Prometheus system
	prometheus prometheus.Registerer
}

// Option is an option configuring a client.
type Option func(cfg *clientConfig) error

// WithBatchSize lowers the number of contacts submitted per query below the
// service maximum. Default MaxBatchSize.
func WithBatchSize(size int) Option {
	return func(cfg *clientConfig) error {
		if size < 1 || size > MaxBatchSize {
			return fmt.Errorf("batch size must be between 1 and %d, got %d", MaxBatchSize, size)
		}
		cfg.batchSize = size
		return nil
	}
}

// WithLogger overrides the logging options for the client, allowing
// specification of additional tags, or redirection / configuration of
// logging level and output.
func WithLogger(l log.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.log = l
		return nil
	}
}

// WithAttestTTL reuses attested sessions for up to ttl instead of
// performing a fresh attestation per batch, by wrapping the provider in an
// attest.CachingProvider. A failed lookup drops the cached sessions, so the
// next one re-attests from scratch. Deployments whose enclave sessions are
// single-use must not set this.
func WithAttestTTL(ttl time.Duration) Option {
	return func(cfg *clientConfig) error {
		if ttl <= 0 {
			return fmt.Errorf("attest ttl must be positive, got %v", ttl)
		}
		cfg.attestTTL = ttl
		return nil
	}
}

// WithObserver registers an observer notified of every batch outcome.
// Multiple observers may be registered.
func WithObserver(o Observer) Option {
	return func(cfg *clientConfig) error {
		if o == nil {
			return errors.New("nil observer")
		}
		cfg.observers = append(cfg.observers, o)
		return nil
	}
}

// WithPrometheus specifies a registry into which to report metrics
func WithPrometheus(r prometheus.Registerer) Option {
	return func(cfg *clientConfig) error {
		cfg.prometheus = r
		return nil
	}
}
