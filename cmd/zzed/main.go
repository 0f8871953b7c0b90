// zzed CLI - compiles, decompiles and edits ZanZarah scripts
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/zzed/annotate"
	"github.com/chazu/zzed/manifest"
	"github.com/chazu/zzed/storage"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries what every command needs: the resolved configuration and
// the streams to read scripts from and write results to.
type cli struct {
	cfg    *manifest.Config
	stdin  io.Reader
	stdout io.Writer
}

var errNoDatabase = errors.New("no game database configured (set [database] path in zzed.toml, ZZED_DATABASE or -db)")

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("zzed", flag.ContinueOnError)
	dbPath := fs.String("db", "", "Game database (overrides zzed.toml and ZZED_DATABASE)")
	verbosity := fs.Int("v", -1, "Log verbosity: 0 errors, 1 warnings, 2 info, 3 debug")
	logFile := fs.String("log", "", "Log file (default stderr)")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := manifest.Resolve(wd)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		if cfg.Database.Path, err = filepath.Abs(*dbPath); err != nil {
			return err
		}
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	configureLogging(cfg.Log)

	rest := fs.Args()
	if len(rest) == 0 {
		usage(fs)
		return errors.New("no command given")
	}

	c := &cli{cfg: cfg, stdin: stdin, stdout: stdout}
	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "compile":
		return c.compile(cmdArgs)
	case "decompile":
		return c.decompile(ctx, cmdArgs)
	case "validate":
		return c.validate(cmdArgs)
	case "enums":
		return c.enums(cmdArgs)
	case "npc":
		return c.npc(ctx, cmdArgs)
	case "item":
		return c.item(ctx, cmdArgs)
	case "list":
		return c.list(ctx, cmdArgs)
	case "export":
		return c.export(ctx, cmdArgs)
	case "import":
		return c.importBundle(ctx, cmdArgs)
	case "lsp":
		return c.lsp()
	case "serve":
		return c.serve(cmdArgs)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: zzed [options] <command> [args]\n\n")
	fmt.Fprintf(out, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(out, "\nScripts (file or stdin):\n")
	fmt.Fprintf(out, "  zzed compile [file]                   # Mnemonic source -> packed script\n")
	fmt.Fprintf(out, "  zzed decompile [-annotate] [file]     # Packed script -> mnemonic source\n")
	fmt.Fprintf(out, "  zzed validate [file]                  # Check a packed script\n")
	fmt.Fprintf(out, "  zzed enums [name]                     # Show the static game tables\n")
	fmt.Fprintf(out, "\nGame database:\n")
	fmt.Fprintf(out, "  zzed list npcs|items                  # List script owners\n")
	fmt.Fprintf(out, "  zzed npc get [-o dir] <uid>           # Decompile the five scripts of an NPC\n")
	fmt.Fprintf(out, "  zzed npc put [-name uid] <uid> <dir>  # Compile and store <dir>/<Slot>.zzs\n")
	fmt.Fprintf(out, "  zzed item get <entityId> [file]       # Decompile an item script\n")
	fmt.Fprintf(out, "  zzed item put <entityId> <file>       # Compile and store an item script\n")
	fmt.Fprintf(out, "  zzed export npc|item <owner> <file>   # Write a script bundle\n")
	fmt.Fprintf(out, "  zzed import [-target owner] <file>    # Verify and store a script bundle\n")
	fmt.Fprintf(out, "\nServers:\n")
	fmt.Fprintf(out, "  zzed lsp                              # Language server on stdio\n")
	fmt.Fprintf(out, "  zzed serve [-addr :4567]              # ScriptService (Connect HTTP/JSON)\n")
}

func configureLogging(cfg manifest.Log) {
	var path *string
	if cfg.File != "" {
		path = &cfg.File
	}
	commonlog.Configure(cfg.Verbosity, path)
}

// openStore opens the configured game database.
func (c *cli) openStore() (*storage.Store, error) {
	path := c.cfg.DatabasePath()
	if path == "" {
		return nil, errNoDatabase
	}
	return storage.Open(path)
}

// engine returns an annotation engine backed by the game database when one
// is configured, and the store to close afterwards (nil otherwise).
func (c *cli) engine() (*annotate.Engine, *storage.Store, error) {
	if c.cfg.DatabasePath() == "" {
		return annotate.New(nil), nil, nil
	}
	store, err := c.openStore()
	if err != nil {
		return nil, nil, err
	}
	return annotate.New(store), store, nil
}

// readInput reads a named file, or stdin for "" and "-".
func (c *cli) readInput(name string) (string, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(c.stdin)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}

func optionalArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("unexpected arguments: %v", args[1:])
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("zzed "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
