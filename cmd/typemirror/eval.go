package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/broady/typemirror/internal/oracle"
)

type EvalCmd struct {
	ClasspathFlags

	Op    string   `arg:"" enum:"erase,subtype,assignable,same,supertypes,all-supertypes,lub,capture,member" help:"Operation: ${enum}."`
	Args  []string `arg:"" help:"Type expressions. 'member' takes a containing type and an element reference."`
	Scope string   `help:"Class whose type parameters are in scope (e.g. java.util.List for E)." short:"s"`
}

func (c *EvalCmd) Run(g *Globals) error {
	ctx := context.Background()
	ts, err := c.types(ctx, g.logger())
	if err != nil {
		return err
	}
	return c.eval(ctx, oracle.New(ts), os.Stdout)
}

func (c *EvalCmd) eval(ctx context.Context, o *oracle.Oracle, w io.Writer) error {
	switch c.Op {
	case "erase":
		if err := c.arity(1); err != nil {
			return err
		}
		res, err := o.Erase(ctx, oracle.TypeParams{Type: c.Args[0], Scope: c.Scope})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res.Text)

	case "subtype", "assignable", "same":
		if err := c.arity(2); err != nil {
			return err
		}
		rel := map[string]func(context.Context, oracle.PairParams) (oracle.RelationResult, error){
			"subtype":    o.IsSubtype,
			"assignable": o.IsAssignable,
			"same":       o.IsSameType,
		}[c.Op]
		res, err := rel(ctx, oracle.PairParams{Left: c.Args[0], Right: c.Args[1], Scope: c.Scope})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res.Holds)

	case "supertypes", "all-supertypes":
		if err := c.arity(1); err != nil {
			return err
		}
		fn := o.DirectSupertypes
		if c.Op == "all-supertypes" {
			fn = o.AllSupertypes
		}
		res, err := fn(ctx, oracle.TypeParams{Type: c.Args[0], Scope: c.Scope})
		if err != nil {
			return err
		}
		printTypes(w, res.Types)

	case "lub":
		if len(c.Args) == 0 {
			return fmt.Errorf("lub needs at least one type")
		}
		res, err := o.LeastUpperBounds(ctx, &oracle.TypesRequest{Types: c.Args, Scope: c.Scope})
		if err != nil {
			return err
		}
		printTypes(w, res.Types)

	case "capture":
		if err := c.arity(1); err != nil {
			return err
		}
		res, err := o.Capture(ctx, &oracle.TypeParams{Type: c.Args[0], Scope: c.Scope})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res.Text)

	case "member":
		if err := c.arity(2); err != nil {
			return err
		}
		res, err := o.AsMemberOf(ctx, &oracle.AsMemberOfRequest{Containing: c.Args[0], Member: c.Args[1], Scope: c.Scope})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res.Text)
	}
	return nil
}

func (c *EvalCmd) arity(n int) error {
	if len(c.Args) != n {
		return fmt.Errorf("%s takes %d argument(s), got %d", c.Op, n, len(c.Args))
	}
	return nil
}

func printTypes(w io.Writer, ts []oracle.TypeResult) {
	for _, t := range ts {
		fmt.Fprintln(w, t.Text)
	}
}
