package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/provider"
)

type CheckCmd struct {
	Files       []string `arg:"" help:"Declaration files (.toml or .txtar) to check."`
	NoBootstrap bool     `help:"Check the files without the built-in library." name:"no-bootstrap"`
	Packages    bool     `help:"List the packages found." short:"p"`
}

func (c *CheckCmd) Run(g *Globals) error {
	flags := ClasspathFlags{Classpath: c.Files, NoBootstrap: c.NoBootstrap}
	logger := g.logger()
	cp, err := flags.load(context.Background(), logger)
	if err != nil {
		return err
	}
	// Resolving every header surfaces bad bounds and supertypes that linking accepts.
	if _, err := provider.New(cp, provider.WithLogger(logger)); err != nil {
		return err
	}
	c.report(os.Stdout, cp)
	return nil
}

func (c *CheckCmd) report(w io.Writer, cp *classpath.Classpath) {
	pkgs := cp.Packages()
	fmt.Fprintf(w, "✓ %d classes in %d packages\n", cp.Len(), len(pkgs))
	if c.Packages {
		for _, p := range pkgs {
			fmt.Fprintf(w, "  %s (%d)\n", p, len(cp.ClassesIn(p)))
		}
	}
	fmt.Fprintln(w, "✓ All declarations resolvable")
}
