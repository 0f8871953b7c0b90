package main

import (
	"context"
	"fmt"
	"io"

	"github.com/chazu/zzed/compiler"
	"github.com/chazu/zzed/gamedata"
)

func (c *cli) compile(args []string) error {
	name, err := optionalArg(args)
	if err != nil {
		return err
	}
	source, err := c.readInput(name)
	if err != nil {
		return err
	}
	packed, err := compiler.Compile(source)
	if err != nil {
		return fmt.Errorf("compile failed:\n%w", err)
	}
	_, err = io.WriteString(c.stdout, packed)
	return err
}

func (c *cli) decompile(ctx context.Context, args []string) error {
	fs := newFlagSet("decompile")
	annotated := fs.Bool("annotate", false, "Append parameter names and resolved references")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, err := optionalArg(fs.Args())
	if err != nil {
		return err
	}
	packed, err := c.readInput(name)
	if err != nil {
		return err
	}

	var a compiler.Annotator
	if *annotated {
		engine, store, err := c.engine()
		if err != nil {
			return err
		}
		defer store.Close()
		a = engine
	}
	_, err = io.WriteString(c.stdout, compiler.Decompile(ctx, packed, a))
	return err
}

func (c *cli) validate(args []string) error {
	name, err := optionalArg(args)
	if err != nil {
		return err
	}
	packed, err := c.readInput(name)
	if err != nil {
		return err
	}
	if err := compiler.Validate(packed); err != nil {
		return fmt.Errorf("invalid script:\n%w", err)
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

func (c *cli) enums(args []string) error {
	name, err := optionalArg(args)
	if err != nil {
		return err
	}
	if name == "" {
		for _, t := range gamedata.Tables() {
			fmt.Fprintf(c.stdout, "%-24s %3d entries\n", t.Name, t.Len())
		}
		return nil
	}

	table, ok := gamedata.TableByName(name)
	if !ok {
		return fmt.Errorf("unknown enumeration: %s", name)
	}
	for i, entry := range table.Entries {
		fmt.Fprintf(c.stdout, "%3d  %s\n", i, entry)
	}
	return nil
}
