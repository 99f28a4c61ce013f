package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// prometheusObserver reports batch outcomes to a prometheus registry.
type prometheusObserver struct {
	batchesStarted     prometheus.Counter
	batchesFailed      prometheus.Counter
	contactsDiscovered prometheus.Counter
	batchDuration      prometheus.Histogram
}

func newPrometheusObserver(r prometheus.Registerer) (*prometheusObserver, error) {
	o := &prometheusObserver{
		batchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "discovery_client",
			Name:      "batches_started_total",
			Help:      "Number of discovery batches submitted.",
		}),
		batchesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "discovery_client",
			Name:      "batches_failed_total",
			Help:      "Number of discovery batches that failed at any stage.",
		}),
		contactsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "discovery_client",
			Name:      "contacts_discovered_total",
			Help:      "Number of registered contacts found across all batches.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "discovery_client",
			Name:      "batch_duration_seconds",
			Help:      "Duration of successful discovery batches.",
		}),
	}
	collectors := []prometheus.Collector{
		o.batchesStarted, o.batchesFailed, o.contactsDiscovered, o.batchDuration,
	}
	for _, coll := range collectors {
		if err := r.Register(coll); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *prometheusObserver) BatchStarted(_ int) {
	o.batchesStarted.Inc()
}

func (o *prometheusObserver) BatchSucceeded(_, discovered int, elapsed time.Duration) {
	o.contactsDiscovered.Add(float64(discovered))
	o.batchDuration.Observe(elapsed.Seconds())
}

func (o *prometheusObserver) BatchFailed(_ int, _ error) {
	o.batchesFailed.Inc()
}
