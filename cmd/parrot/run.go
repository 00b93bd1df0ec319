package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/metrics"
	"github.com/gekatateam/parrot/rpc"
	"github.com/gekatateam/parrot/server"
)

func run(cCtx *cli.Context) error {
	b, err := setup(cCtx.String("config"), true)
	if err != nil {
		return err
	}
	metrics.CollectProcessors(b.dispatcher.Stats)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

	restApi := rpc.Rest(b.registry, logger.Default.With(
		slog.Group("controller",
			"kind", "rpc",
		),
	))

	httpServer, err := server.Http(b.cfg.Common)
	if err != nil {
		b.close()
		return err
	}
	var rpcHandler http.Handler = restApi.Router()
	if basicAuth := (&rpc.BasicAuth{
		Username: b.cfg.Common.RpcUsername,
		Password: b.cfg.Common.RpcPassword,
	}); basicAuth.Enabled() {
		rpcHandler = basicAuth.Handler(rpcHandler)
	}
	httpServer.Mount("/rpc", rpcHandler)

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.Serve(); err != nil {
			logger.Default.Error("http server startup failed",
				"error", err,
			)
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	for _, input := range b.inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := input.Run(ctx, b.dispatcher); err != nil {
				logger.Default.Error("input stopped with error",
					"error", err,
				)
			}
		}()
	}

	logger.Default.Info("bot is up",
		"name", b.cfg.Bot.Name,
		"processors", len(b.dispatcher.Processors()),
		"inputs", len(b.inputs),
	)

loop:
	for {
		select {
		case <-reload:
			if err := b.store.Reload(); err != nil {
				logger.Default.Warn("configuration reload failed",
					"error", err,
				)
				continue
			}
			logger.Default.Info("configuration reloaded")
		case <-quit:
			break loop
		}
	}

	cancel()
	if err := httpServer.Shutdown(context.Background()); err != nil {
		logger.Default.Warn("http server stopped with error",
			"error", err,
		)
	}

	wg.Wait()
	b.close()
	logger.Default.Info("we're done here")

	return nil
}
