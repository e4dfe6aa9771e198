package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPipelineMetricsObserve(t *testing.T) {
	m := NewPipelineMetrics(prometheus.NewRegistry())
	m.ObserveRequest("image", "ok")
	m.ObserveOCRLatency("variant", 2.5)
	m.ObserveStageLatency("primary_extract", 0.9)
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	m.ObserveRequest("text", "needs_clarification")
	m.ObserveOCRLatency("salvage", 0.1)
	m.ObserveStageLatency("normalize", 0.01)
}
