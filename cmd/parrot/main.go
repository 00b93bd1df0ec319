package main

import (
	"os"
	"runtime/debug"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/rpc"
)

var Version = "v.0.0.0"

var cliController = rpc.Cli()

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Default.Error(
				"unexpected panic recovered",
				"error", r,
				"stack_trace", string(debug.Stack()),
			)
		}
	}()

	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.toml",
		Usage:   "path to configuration file",
	}

	formatFlag := &cli.StringFlag{
		Name:  "format",
		Value: "plain",
		Usage: "output format (plain, json, yaml supported)",
	}

	app := &cli.App{
		Name:    "parrot",
		Usage:   "chat bot",
		Version: Version,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run bot with configured inputs and processors",
				Flags:  []cli.Flag{configFlag},
				Action: run,
			},
			{
				Name:      "test",
				Usage:     "load configured processors without connecting inputs",
				UsageText: `test --config config.toml [--message "ping"]`,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringSliceFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "addressed message to dispatch, may be repeated",
					},
				},
				Action: test,
			},
			{
				Name:  "rpc",
				Usage: "cli commands for remote methods",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server-address",
						Aliases: []string{"s"},
						Value:   "http://localhost:9600",
						Usage:   "bot http server address",
					},
					&cli.StringFlag{
						Name:    "username",
						Aliases: []string{"u"},
						EnvVars: []string{"PARROT_RPC_USERNAME"},
						Usage:   "rpc basic auth username",
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						EnvVars: []string{"PARROT_RPC_PASSWORD"},
						Usage:   "rpc basic auth password",
					},
					&cli.DurationFlag{
						Name:    "request-timeout",
						Aliases: []string{"t"},
						Value:   30 * time.Second,
						Usage:   "call timeout",
					},
				},
				Before: cliController.Init,
				Subcommands: []*cli.Command{
					{
						Name:      "list",
						Usage:     "list remote objects or methods of an object",
						UsageText: "list [object]",
						Flags:     []cli.Flag{formatFlag},
						Action:    cliController.List,
					},
					{
						Name:      "usage",
						Usage:     "show method arguments",
						UsageText: "usage <object> <method>",
						Action:    cliController.Usage,
					},
					{
						Name:      "call",
						Usage:     "call remote method",
						UsageText: "call <object> <method> [args...] [--kwarg key=value]",
						Flags: []cli.Flag{
							formatFlag,
							&cli.StringSliceFlag{
								Name:    "kwarg",
								Aliases: []string{"k"},
								Usage:   "keyword argument, format: key=value (can be repeated)",
							},
						},
						Action: cliController.Call,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Default.Error("we're failed",
			"error", err,
		)
		os.Exit(1)
	}
}
