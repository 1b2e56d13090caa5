package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Metrics exposes a tiny in-memory counter set for the relay. Counters only;
// a full metrics stack would be overkill for a stateless pass-through.
type Metrics struct {
	received atomic.Int64
	sent     atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// New returns a zeroed Metrics collector.
func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncReceived() { m.received.Add(1) }
func (m *Metrics) IncSent()     { m.sent.Add(1) }
func (m *Metrics) IncRejected() { m.rejected.Add(1) }
func (m *Metrics) IncFailed()   { m.failed.Add(1) }

// Handler serves the counters as a small JSON document.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"received":%d,"sent":%d,"rejected":%d,"failed":%d}`,
			m.received.Load(), m.sent.Load(), m.rejected.Load(), m.failed.Load())
	})
}
