package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/enclaved/discovery/cds"
	"github.com/enclaved/discovery/e164"
)

// Discover looks up which of the given numbers are registered and returns
// the matching contacts. The input is validated and deduplicated, split into
// batches of at most the configured size, and all batches run concurrently,
// each attested and encrypted on its own.
//
// The lookup is all or nothing: if any batch fails, the first error is
// returned, in-flight batches are canceled, and no partial result escapes.
// Invalid input numbers fail the call before anything is sent; every
// offending number is reported, wrapping e164.ErrInvalidNumber.
func (c *Client) Discover(ctx context.Context, numbers []e164.Number) (cds.ContactSet, error) {
	deduped, err := validate(numbers)
	if err != nil {
		return nil, err
	}
	if len(deduped) == 0 {
		return cds.NewContactSet(), nil
	}

	batches := partition(deduped, c.batchSize)
	c.log.Debugw("starting discovery", "numbers", len(deduped), "batches", len(batches))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]cds.ContactSet, len(batches))
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	for i, batch := range batches {
		wg.Add(1)
		go func(idx int, batch []e164.Number) {
			defer wg.Done()

			contacts, err := c.runBatch(ctx, batch)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				// release the remaining batches early
				cancel()
				return
			}
			results[idx] = contacts
		}(i, batch)
	}
	wg.Wait()

	if firstErr != nil {
		if c.cache != nil {
			// the failure may have been a dead session; the next lookup
			// re-attests
			c.cache.Invalidate()
		}
		c.log.Errorw("discovery failed", "err", firstErr)
		return nil, firstErr
	}

	merged := cds.NewContactSet()
	for _, contacts := range results {
		merged.Merge(contacts)
	}
	c.log.Debugw("discovery complete", "numbers", len(deduped), "contacts", merged.Len())
	return merged, nil
}

// runBatch drives one batch through the attest, build, submit, decode
// pipeline and reports the outcome to the observers.
func (c *Client) runBatch(ctx context.Context, numbers []e164.Number) (cds.ContactSet, error) {
	c.observers.BatchStarted(len(numbers))
	start := time.Now()

	contacts, err := c.submitBatch(ctx, numbers)
	if err != nil {
		c.observers.BatchFailed(len(numbers), err)
		return nil, err
	}
	c.observers.BatchSucceeded(len(numbers), contacts.Len(), time.Since(start))
	return contacts, nil
}

func (c *Client) submitBatch(ctx context.Context, numbers []e164.Number) (cds.ContactSet, error) {
	attestations, err := c.attester.Attest(ctx)
	if err != nil {
		return nil, fmt.Errorf("attesting sessions: %w", err)
	}

	query, err := cds.BuildQuery(numbers, attestations)
	if err != nil {
		return nil, err
	}

	response, err := c.transport.Submit(ctx, query, attestations)
	if err != nil {
		return nil, fmt.Errorf("submitting query: %w", err)
	}

	return cds.DecodeResponse(response, numbers, attestations)
}

// validate checks every number and drops duplicates, preserving first-seen
// order so batch contents stay deterministic for a given input.
func validate(numbers []e164.Number) ([]e164.Number, error) {
	var invalid *multierror.Error
	seen := make(map[e164.Number]struct{}, len(numbers))
	deduped := make([]e164.Number, 0, len(numbers))
	for _, n := range numbers {
		if err := n.Valid(); err != nil {
			invalid = multierror.Append(invalid, err)
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		deduped = append(deduped, n)
	}
	if err := invalid.ErrorOrNil(); err != nil {
		return nil, err
	}
	return deduped, nil
}

// partition splits numbers into chunks of at most size, in input order.
func partition(numbers []e164.Number, size int) [][]e164.Number {
	batches := make([][]e164.Number, 0, (len(numbers)+size-1)/size)
	for len(numbers) > size {
		batches = append(batches, numbers[:size])
		numbers = numbers[size:]
	}
	return append(batches, numbers)
}
