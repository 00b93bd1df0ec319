package core

import (
	"log/slog"
	"time"

	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/metrics"
)

const (
	KindProcessor = "BaseProcessor"
	KindInput     = "BaseInput"
)

type BaseProcessor struct {
	Alias string // processor name, plugin key, configuration section and registry key

	Log   *slog.Logger
	Obs   metrics.ObserveFunc
	Auth  Authoriser
	Store *config.Store

	settings *config.Option[Settings]
	handlers []*Handler
}

// NewBaseProcessor binds standard options of processor alias.
//
// If the processor runs on processed events and priority stays zero,
// the default priority is raised to ElevatedPriority. This is checked
// once, here; later configuration changes are not re-checked.
func NewBaseProcessor(alias string, defaults Settings, store *config.Store, auth Authoriser, log *slog.Logger, obs metrics.ObserveFunc) (*BaseProcessor, error) {
	resolved, err := config.Peek(store, alias, defaults)
	if err != nil {
		return nil, err
	}

	if elevate(resolved).Priority != resolved.Priority {
		defaults.Priority = ElevatedPriority
	}

	settings, err := config.Bind(store, alias, defaults)
	if err != nil {
		return nil, err
	}

	return &BaseProcessor{
		Alias:    alias,
		Log:      log,
		Obs:      obs,
		Auth:     auth,
		Store:    store,
		settings: settings,
	}, nil
}

func (b *BaseProcessor) Name() string {
	return b.Alias
}

func (b *BaseProcessor) Priority() int {
	return b.settings.Get().Priority
}

func (b *BaseProcessor) Settings() Settings {
	return b.settings.Get()
}

func (b *BaseProcessor) Observe(handler string, status metrics.EventStatus, dur time.Duration) {
	b.Obs(b.Alias, handler, status, dur)
}

type BaseInput struct {
	Alias string
	Bot   string

	Log *slog.Logger
	Obs metrics.PluginObserveFunc
}

func (b *BaseInput) Observe(status metrics.EventStatus, dur time.Duration) {
	b.Obs(b.Alias, status, dur)
}
