package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/ZenLiuCN/dynload"
	"github.com/ZenLiuCN/dynload/pool"
)

var logger = slog.Default()

func main() {
	os.Exit(Main())
}

// Main runs the probe command line and returns its exit status.
func Main() int {
	app := cli.NewApp()
	app.Usage = "shared library probe"
	app.Name = "probe"
	app.Description = "probe loads shared libraries and resolves or calls their symbols"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, EnvVars: []string{"DYNLOAD_DEBUG"}},
		&cli.BoolFlag{Name: "lazy", Usage: "bind references of the library on first use"},
		&cli.BoolFlag{Name: "local", Usage: "keep symbols of the library out of the global namespace"},
	}
	app.Before = setup
	app.Commands = []*cli.Command{
		{
			Name:      "load",
			Action:    load,
			Usage:     "load and unload libraries",
			ArgsUsage: "PATH...",
		},
		{
			Name:      "resolve",
			Action:    resolve,
			Usage:     "display addresses of symbols",
			ArgsUsage: "PATH SYMBOL...",
		},
		{
			Name:      "call",
			Action:    call,
			Usage:     "call an integer function with up to three integer arguments",
			ArgsUsage: "PATH SYMBOL [INT...]",
		},
		{
			Name:      "check",
			Action:    check,
			Usage:     "load the libraries of a toml manifest and resolve their symbols",
			ArgsUsage: "MANIFEST",
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "failure %s\n", err)
		return 1
	}
	return 0
}

func setup(ctx *cli.Context) error {
	level := slog.LevelWarn
	if ctx.Bool("debug") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(ctx.App.ErrWriter, &slog.HandlerOptions{Level: level}))
	return nil
}

func flags(ctx *cli.Context) (f dynload.Flag) {
	if ctx.Bool("lazy") {
		f |= dynload.Lazy
	}
	if ctx.Bool("local") {
		f |= dynload.Local
	}
	return
}

func load(ctx *cli.Context) (err error) {
	if ctx.NArg() == 0 {
		return errors.New("missing library path")
	}
	for _, p := range ctx.Args().Slice() {
		var m *dynload.Module
		if m, err = dynload.Open(p, flags(ctx), dynload.WithLogger(logger)); err != nil {
			return
		}
		fmt.Fprintf(ctx.App.Writer, "loaded %s\n", p)
		if ctx.Bool("debug") {
			spew.Fdump(ctx.App.ErrWriter, m.Path(), m.Handle())
		}
		if err = m.Unload(); err != nil {
			return
		}
	}
	return
}

func resolve(ctx *cli.Context) (err error) {
	if ctx.NArg() < 2 {
		return errors.New("missing library path or symbol")
	}
	m, err := dynload.Open(ctx.Args().First(), flags(ctx), dynload.WithLogger(logger))
	if err != nil {
		return
	}
	defer m.Release()
	for _, s := range ctx.Args().Tail() {
		var addr dynload.Sym
		if addr, err = m.Lookup(s); err != nil {
			return
		}
		fmt.Fprintf(ctx.App.Writer, "%s %#x\n", s, uintptr(addr))
	}
	return
}

func call(ctx *cli.Context) (err error) {
	if ctx.NArg() < 2 {
		return errors.New("missing library path or symbol")
	}
	args := ctx.Args().Slice()
	sym, in := args[1], make([]int64, 0, 3)
	for _, a := range args[2:] {
		var v int64
		if v, err = strconv.ParseInt(a, 0, 64); err != nil {
			return fmt.Errorf("invalid argument %q: %w", a, err)
		}
		in = append(in, v)
	}
	if len(in) > 3 {
		return fmt.Errorf("too many arguments: %d", len(in))
	}
	m, err := dynload.Open(args[0], flags(ctx), dynload.WithLogger(logger))
	if err != nil {
		return
	}
	defer m.Release()
	var out int64
	switch len(in) {
	case 0:
		var f func() int64
		if f, err = dynload.Resolve[func() int64](m, sym); err == nil {
			out = f()
		}
	case 1:
		var f func(int64) int64
		if f, err = dynload.Resolve[func(int64) int64](m, sym); err == nil {
			out = f(in[0])
		}
	case 2:
		var f func(int64, int64) int64
		if f, err = dynload.Resolve[func(int64, int64) int64](m, sym); err == nil {
			out = f(in[0], in[1])
		}
	case 3:
		var f func(int64, int64, int64) int64
		if f, err = dynload.Resolve[func(int64, int64, int64) int64](m, sym); err == nil {
			out = f(in[0], in[1], in[2])
		}
	}
	if err != nil {
		return
	}
	fmt.Fprintln(ctx.App.Writer, out)
	return
}

// manifest is the toml document read by check.
type manifest struct {
	Library []struct {
		Name    string   `toml:"name"`
		Path    string   `toml:"path"`
		Lazy    bool     `toml:"lazy"`
		Local   bool     `toml:"local"`
		Symbols []string `toml:"symbols"`
	} `toml:"library"`
}

func check(ctx *cli.Context) (err error) {
	if ctx.NArg() != 1 {
		return errors.New("expect exactly one manifest")
	}
	var mf manifest
	md, err := toml.DecodeFile(ctx.Args().First(), &mf)
	if err != nil {
		return
	}
	for _, k := range md.Undecoded() {
		logger.Warn("unknown manifest key", "key", k.String())
	}
	if ctx.Bool("debug") {
		spew.Fdump(ctx.App.ErrWriter, mf)
	}
	p := pool.New(dynload.WithLogger(logger))
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("close pool", "err", err)
		}
	}()
	var total, failed int
	for _, l := range mf.Library {
		name := l.Name
		if name == "" {
			name = l.Path
		}
		var f dynload.Flag
		if l.Lazy {
			f |= dynload.Lazy
		}
		if l.Local {
			f |= dynload.Local
		}
		total++
		if err := p.Load(name, l.Path, f); err != nil {
			failed++
			fmt.Fprintf(ctx.App.Writer, "%s %v\n", name, err)
			continue
		}
		for _, s := range l.Symbols {
			total++
			if _, err := p.Require(name, s); err != nil {
				failed++
				fmt.Fprintf(ctx.App.Writer, "%s %s missing\n", name, s)
				logger.Debug("require symbol", "library", name, "symbol", s, "err", err)
				continue
			}
			fmt.Fprintf(ctx.App.Writer, "%s %s ok\n", name, s)
		}
	}
	if ctx.Bool("debug") {
		spew.Fdump(ctx.App.ErrWriter, p.Names())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, total)
	}
	return
}
