package metrics

import (
	"time"
)

type EventStatus string

const (
	EventAccepted EventStatus = "accepted"
	EventRejected EventStatus = "rejected"
	EventSkipped  EventStatus = "skipped"
	EventFailed   EventStatus = "failed"

	CallOk        EventStatus = "ok"
	CallException EventStatus = "exception"
	CallNotFound  EventStatus = "not_found"
)

type ObserveFunc func(owner, name string, status EventStatus, t time.Duration)

// PluginObserveFunc observes events of a loaded input or processor by its name.
type PluginObserveFunc func(name string, status EventStatus, t time.Duration)

func ObserveMock(owner, name string, status EventStatus, t time.Duration) {}

func ObservePluginMock(name string, status EventStatus, t time.Duration) {}

func ObserveInputSummary(input string, status EventStatus, t time.Duration) {
	inputSummary.WithLabelValues(input, string(status)).Observe(t.Seconds())
}

func ObserveProcessorSummary(processor string, status EventStatus, t time.Duration) {
	processorSummary.WithLabelValues(processor, string(status)).Observe(t.Seconds())
}

func ObserveHandlerSummary(processor, handler string, status EventStatus, t time.Duration) {
	handlerSummary.WithLabelValues(processor, handler, string(status)).Observe(t.Seconds())
}

func ObserveRpcSummary(object, method string, status EventStatus, t time.Duration) {
	rpcSummary.WithLabelValues(object, method, string(status)).Observe(t.Seconds())
}
