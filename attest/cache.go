package attest

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jonboulle/clockwork"
)

const defaultSessionTTL = time.Minute * 10

// cacheEntries bounds the per-enclave entries kept by a CachingProvider.
// Enclave builds rotate slowly; a small ARC cache holds every live build and
// ages out retired ones.
const cacheEntries = 32

// NewCachingProvider wraps a Provider so that established enclave sessions
// are reused across batches until they age out. Whether reuse is acceptable
// depends on the deployment: wrap only providers whose sessions are
// multi-use. Pass a ttl <= 0 to use the default of 10 minutes.
//
// After a failed batch the caller should Invalidate the cache so the next
// batch re-attests from scratch rather than replaying a dead session.
func NewCachingProvider(inner Provider, ttl time.Duration, clock clockwork.Clock) (*CachingProvider, error) {
	cache, err := lru.NewARC(cacheEntries)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachingProvider{
		inner: inner,
		ttl:   ttl,
		clock: clock,
		cache: cache,
	}, nil
}

// CachingProvider memoizes attestations per enclave with a TTL.
type CachingProvider struct {
	inner Provider
	ttl   time.Duration
	clock clockwork.Clock
	cache *lru.ARCCache

	// lastSet guards against partial assembly: a cached result is only
	// served when every enclave of the most recent upstream answer is still
	// fresh.
	mu      sync.Mutex
	lastSet []string
}

type cachedSession struct {
	att        Attestation
	obtainedAt time.Time
}

// Attest returns the cached attestation map while every session in it is
// fresh, and falls through to the wrapped provider otherwise.
func (c *CachingProvider) Attest(ctx context.Context) (map[string]Attestation, error) {
	if cached, ok := c.fresh(); ok {
		return cached, nil
	}

	atts, err := c.inner.Attest(ctx)
	if err != nil {
		return nil, err
	}
	if len(atts) == 0 {
		return nil, ErrNoAttestations
	}

	now := c.clock.Now()
	set := make([]string, 0, len(atts))
	for id, att := range atts {
		c.cache.Add(id, cachedSession{att: att, obtainedAt: now})
		set = append(set, id)
	}

	c.mu.Lock()
	c.lastSet = set
	c.mu.Unlock()

	return atts, nil
}

func (c *CachingProvider) fresh() (map[string]Attestation, bool) {
	c.mu.Lock()
	set := c.lastSet
	c.mu.Unlock()

	if len(set) == 0 {
		return nil, false
	}

	atts := make(map[string]Attestation, len(set))
	for _, id := range set {
		v, ok := c.cache.Get(id)
		if !ok {
			return nil, false
		}
		entry := v.(cachedSession)
		if c.clock.Since(entry.obtainedAt) >= c.ttl {
			return nil, false
		}
		atts[id] = entry.att
	}
	return atts, true
}

// Invalidate drops every cached session. The next Attest call re-attests.
func (c *CachingProvider) Invalidate() {
	c.mu.Lock()
	c.lastSet = nil
	c.mu.Unlock()
	c.cache.Purge()
}
