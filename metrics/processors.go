package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type ProcessorStats struct {
	Name     string
	Priority int
	Handlers int
}

type processorsCollector struct {
	mu       sync.Mutex
	statFunc []func() []ProcessorStats
}

func (c *processorsCollector) append(f func() []ProcessorStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statFunc = append(c.statFunc, f)
}

func (c *processorsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- processorPriorty
	ch <- processorHandles
}

func (c *processorsCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.statFunc {
		for _, stats := range f() {
			ch <- prometheus.MustNewConstMetric(
				processorPriorty,
				prometheus.GaugeValue,
				float64(stats.Priority),
				stats.Name,
			)
			ch <- prometheus.MustNewConstMetric(
				processorHandles,
				prometheus.GaugeValue,
				float64(stats.Handlers),
				stats.Name,
			)
		}
	}
}

// CollectProcessors registers a source of per-processor gauges.
func CollectProcessors(statFunc func() []ProcessorStats) {
	procs.append(statFunc)
}
