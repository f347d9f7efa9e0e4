package metrics

import "github.com/prometheus/client_golang/prometheus"

// ContactMetrics exposes counters/histograms for the contact-form intake flow.
type ContactMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	storeWritesTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	handleLatency      *prometheus.HistogramVec
}

// NewContactMetrics registers the collectors with reg, or the default registerer when nil.
func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	m := &ContactMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactform",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Contact form requests by terminal outcome",
		}, []string{"outcome"}),
		storeWritesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactform",
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Lead store writes by phase and result",
		}, []string{"phase", "status"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactform",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Notification email attempts by kind and result",
		}, []string{"kind", "status"}),
		handleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contactform",
			Subsystem: "intake",
			Name:      "handle_latency_seconds",
			Help:      "Latency of one contact form invocation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.storeWritesTotal, m.notificationsTotal, m.handleLatency)
	return m
}

// ObserveSubmission records the terminal outcome and latency of one request.
func (m *ContactMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.handleLatency.WithLabelValues(outcome).Observe(seconds)
}

// ObserveStoreWrite records one lead store write.
func (m *ContactMetrics) ObserveStoreWrite(phase string, err error) {
	if m == nil {
		return
	}
	m.storeWritesTotal.WithLabelValues(phase, statusLabel(err)).Inc()
}

// ObserveNotification records one email attempt.
func (m *ContactMetrics) ObserveNotification(kind string, err error) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
