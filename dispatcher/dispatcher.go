package dispatcher

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/metrics"
	perrors "github.com/gekatateam/parrot/pkg/errors"
	"github.com/gekatateam/parrot/plugins"
	"github.com/gekatateam/parrot/plugins/common/elog"
	"github.com/gekatateam/parrot/rpc"
)

var _ core.Dispatcher = (*Dispatcher)(nil)

// Dispatcher owns processors and runs events through them
// in priority order.
type Dispatcher struct {
	store *config.Store
	auth  core.Authoriser
	rpc   *rpc.Registry
	log   *slog.Logger

	ProcObs    metrics.PluginObserveFunc
	HandlerObs metrics.ObserveFunc

	mu    *sync.RWMutex
	procs []core.Processor
}

func New(store *config.Store, auth core.Authoriser, registry *rpc.Registry, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:      store,
		auth:       auth,
		rpc:        registry,
		log:        log,
		ProcObs:    metrics.ObserveProcessorSummary,
		HandlerObs: metrics.ObserveHandlerSummary,
		mu:         &sync.RWMutex{},
	}
}

// Build instantiates processors by plugin key. Every processor that fails
// is reported, the rest are kept.
func (d *Dispatcher) Build(names []string) error {
	var errs perrors.Errorlist
	for _, name := range names {
		if err := d.add(name); err != nil {
			d.log.Error("processor not loaded",
				"processor", name,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		d.log.Info("processor loaded",
			"processor", name,
		)
	}
	return errs.ErrOrNil()
}

func (d *Dispatcher) add(name string) (err error) {
	if _, ok := d.Lookup(name); ok {
		return fmt.Errorf("%v: processor already loaded", name)
	}

	processorFunc, ok := plugins.GetProcessor(name)
	if !ok {
		return fmt.Errorf("%v: unknown processor plugin", name)
	}
	processor := processorFunc()

	defaults := core.DefaultSettings()
	if defaulter, ok := processor.(core.Defaulter); ok {
		defaults = defaulter.Defaults()
	}

	log, err := d.processorLogger(name, defaults)
	if err != nil {
		return fmt.Errorf("%v: %w", name, err)
	}

	base, err := core.NewBaseProcessor(name, defaults, d.store, d.auth, log, d.HandlerObs)
	if err != nil {
		return &core.ConfigurationError{Processor: name, Err: err}
	}
	defer func() {
		if err != nil {
			d.store.Unbind(name)
		}
	}()

	baseField := reflect.ValueOf(processor).Elem().FieldByName(core.KindProcessor)
	if baseField.IsValid() && baseField.CanSet() {
		baseField.Set(reflect.ValueOf(base))
	} else {
		return fmt.Errorf("%v processor plugin does not contains BaseProcessor", name)
	}

	if err := processor.Init(); err != nil {
		return &core.ConfigurationError{Processor: name, Err: err}
	}

	if len(processor.Handlers()) == 0 {
		return &core.ConfigurationError{Processor: name, Err: core.ErrNoHandlers}
	}

	if exposer, ok := processor.(rpc.Exposer); ok && d.rpc != nil {
		object, err := rpc.NewObject(name, exposer.RemoteMethods()...)
		if err != nil {
			return &core.ConfigurationError{Processor: name, Err: err}
		}

		if err := d.rpc.Register(object); err != nil {
			return err
		}
	}

	d.mu.Lock()
	d.procs = append(d.procs, processor)
	d.mu.Unlock()
	return nil
}

func (d *Dispatcher) processorLogger(name string, defaults core.Settings) (*slog.Logger, error) {
	settings, err := config.Peek(d.store, name, defaults)
	if err != nil {
		return nil, err
	}

	log := d.log
	if len(settings.LogLevel) > 0 {
		if log, err = logger.Leveled(settings.LogLevel); err != nil {
			return nil, err
		}
	}

	return log.With(slog.Group("processor",
		"name", name,
	)), nil
}

// Dispatch passes event through every processor, lower priority first.
// Priorities are read on each pass, so reloaded settings take effect.
// A failed processor is logged and the pass continues.
func (d *Dispatcher) Dispatch(e *core.Event) *core.Event {
	for _, p := range d.Processors() {
		now := time.Now()
		out, err := process(p, e)
		switch {
		case err != nil:
			d.ProcObs(p.Name(), metrics.EventFailed, time.Since(now))
			if out != nil {
				e = out
			}
			d.log.Error("event processing failed",
				"processor", p.Name(),
				"error", err,
				elog.EventGroup(e),
			)
			if perrors.AsType[*core.ConfigurationError](err) {
				d.log.Warn("processor is misconfigured and will fail on every event",
					"processor", p.Name(),
				)
			}
		case out == nil:
			d.ProcObs(p.Name(), metrics.EventSkipped, time.Since(now))
		default:
			d.ProcObs(p.Name(), metrics.EventAccepted, time.Since(now))
			e = out
		}
	}
	return e
}

func process(p core.Processor, e *core.Event) (out *core.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("processor %v panicked: %v", p.Name(), r)
		}
	}()
	return p.Process(e)
}

// Processors returns loaded processors in dispatch order.
func (d *Dispatcher) Processors() []core.Processor {
	d.mu.RLock()
	procs := slices.Clone(d.procs)
	d.mu.RUnlock()

	slices.SortStableFunc(procs, func(a, b core.Processor) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})
	return procs
}

func (d *Dispatcher) Lookup(name string) (core.Processor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.procs {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

func (d *Dispatcher) Stats() []metrics.ProcessorStats {
	procs := d.Processors()
	stats := make([]metrics.ProcessorStats, 0, len(procs))
	for _, p := range procs {
		stats = append(stats, metrics.ProcessorStats{
			Name:     p.Name(),
			Priority: p.Priority(),
			Handlers: len(p.Handlers()),
		})
	}
	return stats
}

// Close releases processors holding resources.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs perrors.Errorlist
	for _, p := range d.procs {
		if closer, ok := p.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%v: %w", p.Name(), err))
			}
		}
		if d.rpc != nil {
			d.rpc.Unregister(p.Name())
		}
		d.store.Unbind(p.Name())
	}
	d.procs = nil
	return errs.ErrOrNil()
}
