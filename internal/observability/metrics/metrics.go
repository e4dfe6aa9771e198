package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the extraction pipeline.
type PipelineMetrics struct {
	requestsTotal *prometheus.CounterVec
	ocrLatency    *prometheus.HistogramVec
	stageLatency  *prometheus.HistogramVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apptparse",
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Total parse requests by input type and verdict",
		}, []string{"input_type", "verdict"}),
		ocrLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "apptparse",
			Subsystem: "pipeline",
			Name:      "ocr_latency_seconds",
			Help:      "Latency of OCR text acquisition",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		}, []string{"outcome"}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "apptparse",
			Subsystem: "pipeline",
			Name:      "stage_latency_seconds",
			Help:      "Latency of individual pipeline stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.ocrLatency, m.stageLatency)
	return m
}

func (m *PipelineMetrics) ObserveRequest(inputType, verdict string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(inputType, verdict).Inc()
}

func (m *PipelineMetrics) ObserveOCRLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ocrLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *PipelineMetrics) ObserveStageLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage).Observe(seconds)
}
