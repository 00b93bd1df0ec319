package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/gekatateam/parrot/core"
)

func test(cCtx *cli.Context) error {
	b, err := setup(cCtx.String("config"), false)
	if err != nil {
		return err
	}
	defer b.close()

	for _, p := range b.dispatcher.Processors() {
		fmt.Printf("processor %v: priority %v, %v handlers\n", p.Name(), p.Priority(), len(p.Handlers()))
	}

	for _, m := range cCtx.StringSlice("message") {
		e := core.NewEvent("cli", core.EventMessage)
		e.Sender = "cli"
		e.Channel = "cli"
		e.Message = m
		e.Addressed = true

		replies := b.dispatcher.Dispatch(e).Replies()
		fmt.Printf("> %v\n", m)
		if len(replies) == 0 {
			fmt.Println("< (no reply)")
			continue
		}
		fmt.Printf("< %v\n", strings.Join(replies, "\n< "))
	}

	return nil
}
