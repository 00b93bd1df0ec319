package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	inputSummary     *prometheus.SummaryVec
	processorSummary *prometheus.SummaryVec
	handlerSummary   *prometheus.SummaryVec
	rpcSummary       *prometheus.SummaryVec

	procs            *processorsCollector
	processorPriorty *prometheus.Desc
	processorHandles *prometheus.Desc
)

func init() {
	// status="(accepted|rejected|skipped|failed)"
	inputSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "input_plugin_processed_events",
			Help:       "Events statistic for inputs",
			MaxAge:     time.Minute,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"input", "status"},
	)

	processorSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "processor_plugin_processed_events",
			Help:       "Events statistic for processors",
			MaxAge:     time.Minute,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"processor", "status"},
	)

	handlerSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "processor_handler_calls",
			Help:       "Handlers invocations statistic",
			MaxAge:     time.Minute,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"processor", "handler", "status"},
	)

	// status="(ok|exception|not_found)"
	rpcSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "rpc_method_calls",
			Help:       "Remote methods invocations statistic",
			MaxAge:     time.Minute,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"object", "method", "status"},
	)

	procs = &processorsCollector{}
	processorPriorty = prometheus.NewDesc(
		"processor_priority",
		"Current processor priority, lower runs first",
		[]string{"processor"},
		nil,
	)
	processorHandles = prometheus.NewDesc(
		"processor_handlers",
		"Count of registered processor handlers",
		[]string{"processor"},
		nil,
	)

	prometheus.MustRegister(inputSummary)
	prometheus.MustRegister(processorSummary)
	prometheus.MustRegister(handlerSummary)
	prometheus.MustRegister(rpcSummary)
	prometheus.MustRegister(procs)
}
