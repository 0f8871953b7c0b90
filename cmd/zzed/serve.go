package main

import (
	"github.com/chazu/zzed/editor"
	"github.com/chazu/zzed/manifest"
	"github.com/chazu/zzed/server"
)

// lsp runs the language server on stdio. Hover descriptions are resolved
// from the game database when one is configured.
func (c *cli) lsp() error {
	engine, store, err := c.engine()
	if err != nil {
		return err
	}
	defer store.Close()
	return server.NewLSP(engine).Run()
}

// serve runs the ScriptService. Without a game database only the compile,
// decompile, validate and enumeration procedures are available.
func (c *cli) serve(args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", c.cfg.Server.Addr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *addr == "" {
		*addr = manifest.DefaultAddr
	}

	engine, store, err := c.engine()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []server.ServerOption{server.WithAnnotator(engine)}
	if store != nil {
		opts = append(opts, server.WithSession(editor.NewSession(store, engine)))
	}
	srv := server.New(opts...)
	defer srv.Stop()
	return srv.ListenAndServe(*addr)
}
