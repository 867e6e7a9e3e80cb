package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"

	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// IngestionMetrics tracks control unit readings by transport.
type IngestionMetrics struct {
	saved   *prometheus.CounterVec
	batches *prometheus.CounterVec
	dropped prometheus.Counter
}

// NewIngestionMetrics registers the ingestion metrics on the provided registerer.
func NewIngestionMetrics(reg prometheus.Registerer) *IngestionMetrics {
	if reg == nil {
		return &IngestionMetrics{}
	}
	saved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "readings_saved_total",
		Help: "Sensor readings persisted.",
	}, []string{"source"})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reading_batches_total",
		Help: "Reading batches handled, by outcome.",
	}, []string{"source", "result"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingestion_queue_dropped_total",
		Help: "MQTT messages dropped because the ingestion queue was full.",
	})
	reg.MustRegister(saved, batches, dropped)
	return &IngestionMetrics{
		saved:   saved,
		batches: batches,
		dropped: dropped,
	}
}

func (m *IngestionMetrics) AddSaved(source string, n int) {
	if m == nil || m.saved == nil {
		return
	}
	m.saved.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}

func (m *IngestionMetrics) IncBatch(source, result string) {
	if m == nil || m.batches == nil {
		return
	}
	m.batches.WithLabelValues(normalizeLabel(source), normalizeLabel(result)).Inc()
}

func (m *IngestionMetrics) IncDropped() {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.Inc()
}
