/*
Package client orchestrates private contact discovery: it partitions a
contact list into batches, runs the attest, encrypt, submit and decrypt
pipeline for every batch concurrently, and merges the per-batch results into
one contact set.

Example:

	import (
		"context"
		"fmt"

		"github.com/enclaved/discovery/client"
		"github.com/enclaved/discovery/e164"
	)

	func main() {
		c, err := client.New(transport, attester)
		if err != nil {
			panic(err)
		}

		contacts, err := c.Discover(context.Background(), []e164.Number{
			"+15551230001",
			"+447700900123",
		})
		if err != nil {
			panic(err)
		}

		for _, contact := range contacts.Slice() {
			fmt.Println(contact.Number, contact.UserID)
		}
	}

The transport and the attestation provider are injected: the package holds
the protocol logic only and stays agnostic of how bytes reach the enclave
fleet and of how sessions are attested. A lookup either fully succeeds or
returns an error; there are no partial results.

In an application the following options are likely to be customized:

	WithBatchSize()
		lowers the number of contacts submitted per request below the
		server maximum.

	WithObserver()
		reports batch outcomes to application code.

	WithPrometheus()
		enables metrics reporting on batch outcomes and durations to a
		provided prometheus registry.
*/
package client
