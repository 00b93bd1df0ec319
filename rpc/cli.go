package rpc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/urfave/cli/v2"
)

type cliApi struct {
	gw *Gateway
}

func Cli() *cliApi {
	return &cliApi{}
}

func (c *cliApi) Init(cCtx *cli.Context) error {
	c.gw = NewGateway(cCtx.String("server-address"), "rpc", cCtx.Duration("request-timeout")).
		WithBasicAuth(cCtx.String("username"), cCtx.String("password"))
	return nil
}

// List prints objects or, if an object is given, its methods.
func (c *cliApi) List(cCtx *cli.Context) error {
	if cCtx.NArg() == 0 {
		objects, err := c.gw.Objects()
		if err != nil {
			return fail("list", err)
		}
		return printInfo(cCtx.String("format"), objects, func(w *tabwriter.Writer) {
			fmt.Fprintf(w, "%v\n", "object")
			fmt.Fprintf(w, "%v\n", "------")
			for _, o := range objects {
				fmt.Fprintf(w, "%v\n", o)
			}
		})
	}

	object := cCtx.Args().First()
	listing, err := c.gw.listing(object)
	if err != nil {
		return fail("list", err)
	}

	return printInfo(cCtx.String("format"), listing, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "%v\t%v\n", "method", "args")
		fmt.Fprintf(w, "%v\t%v\n", "------", "----")
		for _, f := range listing.Functions {
			fmt.Fprintf(w, "%v\t%v\n", f, strings.Join(listing.Args[f], ", "))
		}
	})
}

func (c *cliApi) Usage(cCtx *cli.Context) error {
	if cCtx.NArg() != 2 {
		return errors.New("usage: <object> <method>")
	}

	object, method := cCtx.Args().Get(0), cCtx.Args().Get(1)
	args, err := c.gw.Usage(object, method)
	if err != nil {
		return fail("usage", err)
	}

	fmt.Printf("%v.%v(%v)\n", object, method, strings.Join(args, ", "))
	return nil
}

func (c *cliApi) Call(cCtx *cli.Context) error {
	if cCtx.NArg() < 2 {
		return errors.New("usage: <object> <method> [args...]")
	}

	kwargs := make(map[string]string)
	for _, kv := range cCtx.StringSlice("kwarg") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("bad keyword argument %q, key=value expected", kv)
		}
		kwargs[k] = v
	}

	all := cCtx.Args().Slice()
	result, err := c.gw.Call(all[0], all[1], all[2:], kwargs)
	if err != nil {
		return fail("call", err)
	}

	var value any
	if err := json.Unmarshal(result, &value); err != nil {
		return fail("call", err)
	}

	return printInfo(cCtx.String("format"), value, func(w *tabwriter.Writer) {
		switch v := value.(type) {
		case []any:
			for _, e := range v {
				fmt.Fprintf(w, "%v\n", e)
			}
		default:
			fmt.Fprintf(w, "%v\n", v)
		}
	})
}

func fail(command string, err error) error {
	var remote *RemoteError
	switch {
	case errors.As(err, &NotFoundErr):
		return fmt.Errorf("cli %v: %w", command, err)
	case errors.As(err, &remote):
		return fmt.Errorf("cli %v: remote method raised: %v", command, remote.Message)
	default:
		return fmt.Errorf("cli %v: exec failed - %w", command, err)
	}
}

func printInfo(format string, info any, plain func(w *tabwriter.Writer)) error {
	switch format {
	case "plain":
		b := new(bytes.Buffer)
		w := tabwriter.NewWriter(b, 1, 1, 1, ' ', 0)
		plain(w)
		w.Flush()
		fmt.Print(b.String())
	case "json":
		result, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(result))
	case "yaml":
		result, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, string(result))
	default:
		return fmt.Errorf("unknown format: %v", format)
	}
	return nil
}
