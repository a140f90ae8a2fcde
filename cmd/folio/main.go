// Package main is the entry point for the folio command.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/input/fuzzy"
	"github.com/dshills/folio/internal/input/keymap"
	"github.com/dshills/folio/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage reports bad arguments; the usage text has already been shown.
var errUsage = errors.New("usage")

type cli struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	configPath string
	logLevel   string
}

type command struct {
	name    string
	summary string
	run     func(c *cli, args []string) error
}

var commandList = []command{
	{"convert", "convert a document between JSON and HTML", (*cli).convert},
	{"validate", "check documents against the schema", (*cli).validate},
	{"replay", "play a macro against a document", (*cli).replay},
	{"shell", "edit a document gesture by gesture from stdin", (*cli).shell},
	{"commands", "list editor commands, optionally filtered", (*cli).commands},
	{"keys", "list key bindings, optionally filtered", (*cli).keys},
	{"config", "print the effective configuration", (*cli).config},
	{"version", "print version information", (*cli).version},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	fs := flag.NewFlagSet("folio", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&c.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	fs.Usage = func() { c.usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name := fs.Arg(0)
	for _, cmd := range commandList {
		if cmd.name != name {
			continue
		}
		if err := cmd.run(c, fs.Args()[1:]); err != nil {
			if errors.Is(err, errUsage) {
				return 2
			}
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	names := make([]string, len(commandList))
	for i, cmd := range commandList {
		names[i] = cmd.name
	}
	fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
	if hint := fuzzy.Suggest(name, names, 1); len(hint) > 0 {
		fmt.Fprintf(stderr, "Did you mean %q?\n", hint[0])
	}
	return 2
}

func (c *cli) usage(fs *flag.FlagSet) {
	fmt.Fprintf(c.stderr, "folio - rich text editing core\n\n")
	fmt.Fprintf(c.stderr, "Usage: folio [options] <command> [arguments]\n\n")
	fmt.Fprintf(c.stderr, "Commands:\n")
	for _, cmd := range commandList {
		fmt.Fprintf(c.stderr, "  %-10s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(c.stderr, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(c.stderr, "\nExamples:\n")
	fmt.Fprintf(c.stderr, "  folio convert -to html doc.json     Render a JSON document\n")
	fmt.Fprintf(c.stderr, "  folio replay -in doc.html keys.txt  Replay a macro and print HTML\n")
	fmt.Fprintf(c.stderr, "  folio commands head                 Find heading commands\n")
	fmt.Fprintf(c.stderr, "  folio shell -in doc.html            Edit interactively\n")
}

// flags returns a flag set for a subcommand writing to stderr.
func (c *cli) flags(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: folio %s [options] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *cli) logger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: logging.ParseFormat(cfg.Logging.Format),
		Output: c.stderr,
		Prefix: "folio",
	})
}

// newEditor builds an editor from the configuration.
func (c *cli) newEditor(cfg *config.Config, extra ...editor.Option) (*editor.Editor, *logging.Logger, error) {
	log := c.logger(cfg)
	opts, err := cfg.EditorOptions(log, nil)
	if err != nil {
		return nil, nil, err
	}
	ed, err := editor.New(append(opts, extra...)...)
	if err != nil {
		return nil, nil, err
	}
	return ed, log, nil
}

func (c *cli) version(args []string) error {
	fs := c.flags("version", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "folio %s\n", version)
	fmt.Fprintf(c.stdout, "Commit: %s\n", commit)
	fmt.Fprintf(c.stdout, "Built: %s\n", date)
	return nil
}

func (c *cli) config(args []string) error {
	fs := c.flags("config", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = c.stdout.Write(data)
	return err
}

func (c *cli) commands(args []string) error {
	fs := c.flags("commands", "[query]")
	limit := fs.Int("n", 0, "Show at most n matches")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	ed, _, err := c.newEditor(cfg)
	if err != nil {
		return err
	}
	names := ed.Commands().Names()
	sort.Strings(names)

	m := fuzzy.NewMatcher(fuzzy.DefaultOptions())
	for _, r := range m.Match(fs.Arg(0), fuzzy.Strings(names), *limit) {
		mark := " "
		if ed.Can(r.Item.Text) {
			mark = "*"
		}
		fmt.Fprintf(c.stdout, "%s %s\n", mark, r.Item.Text)
	}
	return nil
}

func (c *cli) keys(args []string) error {
	fs := c.flags("keys", "[query]")
	export := fs.String("export", "", "Write the matching bindings to a JSON or YAML keymap file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	ed, _, err := c.newEditor(cfg)
	if err != nil {
		return err
	}

	var items []fuzzy.Item
	for _, b := range ed.Keymaps().AllBindings() {
		items = append(items, fuzzy.Item{Text: b.Action + " " + b.Chord, Data: b})
	}
	m := fuzzy.NewMatcher(fuzzy.Options{Weights: fuzzy.DefaultWeights()})
	out := keymap.New("export", keymap.PriorityUser)
	for _, r := range m.Match(fs.Arg(0), items, 0) {
		b := r.Item.Data.(keymap.BindingMatch)
		fmt.Fprintf(c.stdout, "%-16s %-24s %s\n", b.Chord, b.Action, b.Keymap.Name)
		out.Bindings = append(out.Bindings, b.Binding)
	}
	if *export != "" {
		return out.SaveFile(*export)
	}
	return nil
}
