package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"

	"github.com/gekatateam/parrot/auth"
	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/dispatcher"
	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/metrics"
	xerrors "github.com/gekatateam/parrot/pkg/errors"
	"github.com/gekatateam/parrot/pkg/mapstructure"
	"github.com/gekatateam/parrot/plugins"
	"github.com/gekatateam/parrot/rpc"

	_ "github.com/gekatateam/parrot/plugins/inputs"
	_ "github.com/gekatateam/parrot/plugins/processors"
)

type bot struct {
	cfg        *config.Config
	store      *config.Store
	registry   *rpc.Registry
	dispatcher *dispatcher.Dispatcher
	inputs     []core.Input
}

func setup(file string, initInputs bool) (*bot, error) {
	cfg, err := config.ReadConfig(file)
	if err != nil {
		return nil, fmt.Errorf("error reading configuration file: %v", err.Error())
	}

	if err := logger.Init(cfg.Common); err != nil {
		return nil, fmt.Errorf("logger initialization failed: %v", err.Error())
	}

	store := config.NewStore()
	store.SetLoader(config.LayerFile, config.FileLoader(file))
	store.SetLoader(config.LayerEnv, config.EnvLoader(cfg.Bot.EnvPrefix, os.Environ))
	if err := store.Reload(); err != nil {
		return nil, fmt.Errorf("configuration store initialization failed: %v", err.Error())
	}

	authoriser, err := auth.New(cfg.Auth, logger.Default.With(
		slog.Group("auth",
			"kind", "static",
		),
	))
	if err != nil {
		return nil, fmt.Errorf("authoriser initialization failed: %v", err.Error())
	}

	registry := rpc.NewRegistry()
	d := dispatcher.New(store, authoriser, registry, logger.Default.With(
		slog.Group("dispatcher",
			"bot", cfg.Bot.Name,
		),
	))

	if err := d.Build(cfg.Bot.Load); err != nil {
		var loadErr xerrors.Errorlist
		// any other error means that app must die
		if !errors.As(err, &loadErr) || cfg.Bot.FailFast {
			d.Close()
			return nil, err
		}
	}

	remote, err := dispatcher.Remote(d)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(remote); err != nil {
		return nil, err
	}

	b := &bot{
		cfg:        cfg,
		store:      store,
		registry:   registry,
		dispatcher: d,
	}

	if err := b.configureInputs(initInputs); err != nil {
		d.Close()
		return nil, err
	}

	return b, nil
}

func (b *bot) configureInputs(initInputs bool) error {
	for name, inputCfg := range b.cfg.Inputs {
		inputFunc, ok := plugins.GetInput(name)
		if !ok {
			return fmt.Errorf("unknown input plugin in configuration: %v", name)
		}
		input := inputFunc()

		baseField := reflect.ValueOf(input).Elem().FieldByName(core.KindInput)
		if baseField.IsValid() && baseField.CanSet() {
			baseField.Set(reflect.ValueOf(&core.BaseInput{
				Alias: name,
				Bot:   b.cfg.Bot.Name,
				Log: logger.Default.With(slog.Group("input",
					"name", name,
				)),
				Obs: metrics.ObserveInputSummary,
			}))
		} else {
			return fmt.Errorf("%v input plugin does not contains BaseInput", name)
		}

		if err := mapstructure.Decode(inputCfg, input); err != nil {
			return fmt.Errorf("%v input configuration mapping error: %v", name, err.Error())
		}

		if initInputs {
			if err := input.Init(); err != nil {
				return fmt.Errorf("%v input initialization error: %v", name, err.Error())
			}
		}

		b.inputs = append(b.inputs, input)
	}

	return nil
}

func (b *bot) close() {
	for _, i := range b.inputs {
		if err := i.Close(); err != nil {
			logger.Default.Warn("input closed with error",
				"error", err,
			)
		}
	}

	if err := b.dispatcher.Close(); err != nil {
		logger.Default.Warn("processors closed with error",
			"error", err,
		)
	}
}
