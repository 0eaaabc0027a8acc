package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/provider"
	"github.com/broady/typemirror/mirror/typeops"
)

type CLI struct {
	Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Serve   ServeCmd   `cmd:"" help:"Serve the type oracle over HTTP."`
	Eval    EvalCmd    `cmd:"" help:"Evaluate one type operation and print the result."`
	Check   CheckCmd   `cmd:"" help:"Load declaration files and report linking errors."`
}

// Globals are flags shared by every command.
type Globals struct {
	LogLevel slog.Level `help:"Log level (debug, info, warn, error)." default:"info" name:"log-level"`
}

func (g *Globals) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: g.LogLevel}))
}

// ClasspathFlags selects the declaration files layered over the bootstrap library.
type ClasspathFlags struct {
	Classpath   []string `help:"Declaration files (.toml or .txtar) to load." short:"c" sep:","`
	NoBootstrap bool     `help:"Do not load the built-in java.lang/java.util/java.io library." name:"no-bootstrap"`
}

func (f *ClasspathFlags) load(ctx context.Context, logger *slog.Logger) (*classpath.Classpath, error) {
	l := classpath.NewLoader().WithLogger(logger)
	if !f.NoBootstrap {
		l.WithBootstrap()
	}
	for _, path := range f.Classpath {
		if err := l.AddFile(path); err != nil {
			return nil, err
		}
	}
	return l.Load(ctx)
}

// types loads the classpath and builds the algebra over it.
func (f *ClasspathFlags) types(ctx context.Context, logger *slog.Logger) (*typeops.Types, error) {
	cp, err := f.load(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("load classpath: %w", err)
	}
	p, err := provider.New(cp, provider.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("resolve classpath: %w", err)
	}
	return typeops.New(p, typeops.WithLogger(logger)), nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("typemirror"),
		kong.Description("Type oracle for a nominal, generic, annotated type system."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
