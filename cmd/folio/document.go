package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/tidwall/pretty"

	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/input/macro"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/markup"
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/plugin"
)

// Document formats.
const (
	formatAuto = "auto"
	formatJSON = "json"
	formatHTML = "html"
)

func checkFormat(name, v string, auto bool) error {
	switch v {
	case formatJSON, formatHTML:
		return nil
	case formatAuto:
		if auto {
			return nil
		}
	}
	return fmt.Errorf("invalid -%s %q", name, v)
}

// readInput reads path, or stdin for "" and "-".
func (c *cli) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(path)
}

// detectFormat guesses from the extension, then from the first byte.
func detectFormat(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".html", ".htm":
		return formatHTML
	}
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		return formatJSON
	}
	return formatHTML
}

func decodeDoc(s *model.Schema, data []byte, format string) (*model.Node, error) {
	if format == formatJSON {
		return s.NodeFromJSON(data)
	}
	return markup.NewParser(s).Parse(string(data))
}

func encodeDoc(w io.Writer, doc *model.Node, format string, compact bool) error {
	if format == formatHTML {
		out, err := markup.NewSerializer(doc.Type.Schema).NodeHTML(doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if compact {
		data = append(pretty.Ugly(data), '\n')
	} else {
		data = pretty.Pretty(data)
	}
	_, err = w.Write(data)
	return err
}

// readDoc reads and decodes one document.
func (c *cli) readDoc(s *model.Schema, path, format string) (*model.Node, error) {
	data, err := c.readInput(path)
	if err != nil {
		return nil, err
	}
	if format == formatAuto {
		format = detectFormat(path, data)
	}
	doc, err := decodeDoc(s, data, format)
	if err != nil {
		return nil, err
	}
	if err := doc.Check(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *cli) convert(args []string) error {
	fs := c.flags("convert", "[file]")
	from := fs.String("from", formatAuto, "Input format (auto, json, html)")
	to := fs.String("to", "", "Output format (json, html); defaults to the other format")
	compact := fs.Bool("compact", false, "Write JSON on one line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkFormat("from", *from, true); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, err := cfg.LoadSchema()
	if err != nil {
		return err
	}

	data, err := c.readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	in := *from
	if in == formatAuto {
		in = detectFormat(fs.Arg(0), data)
	}
	out := *to
	if out == "" {
		out = formatJSON
		if in == formatJSON {
			out = formatHTML
		}
	}
	if err := checkFormat("to", out, false); err != nil {
		return err
	}

	doc, err := decodeDoc(s, data, in)
	if err != nil {
		return err
	}
	return encodeDoc(c.stdout, doc, out, *compact)
}

func (c *cli) validate(args []string) error {
	fs := c.flags("validate", "file...")
	from := fs.String("from", formatAuto, "Input format (auto, json, html)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkFormat("from", *from, true); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, err := cfg.LoadSchema()
	if err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	failed := 0
	for _, p := range paths {
		if _, err := c.readDoc(s, p, *from); err != nil {
			fmt.Fprintf(c.stdout, "%s: %v\n", p, err)
			failed++
			continue
		}
		fmt.Fprintf(c.stdout, "%s: ok\n", p)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents invalid", failed, len(paths))
	}
	return nil
}

func (c *cli) replay(args []string) error {
	fs := c.flags("replay", "macro")
	in := fs.String("in", "", "Starting document (JSON or HTML); empty starts blank")
	to := fs.String("to", formatHTML, "Output format (json, html)")
	count := fs.Int("n", 1, "Play the macro n times")
	strict := fs.Bool("strict", false, "Fail on gestures that have no effect")
	var scripts multiFlag
	fs.Var(&scripts, "script", "Lua script to load (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	if err := checkFormat("to", *to, false); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	m, err := macro.LoadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	var extra []editor.Option
	if *in != "" {
		s, err := cfg.LoadSchema()
		if err != nil {
			return err
		}
		doc, err := c.readDoc(s, *in, formatAuto)
		if err != nil {
			return err
		}
		extra = append(extra, editor.WithDoc(doc))
	}
	ed, log, err := c.newEditor(cfg, extra...)
	if err != nil {
		return err
	}
	if err := loadScripts(ed, log, cfg, scripts); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []macro.PlayerOption{macro.WithPlatform(ed.Keymaps().Mac())}
	if *strict {
		opts = append(opts, macro.Strict())
	}
	report, err := macro.NewPlayer(opts...).Play(ctx, m, *count, ed)
	if err != nil {
		return err
	}
	log.WithFields(map[string]any{
		"played":  report.Played,
		"ignored": len(report.Ignored),
	}).Info("replayed %s", m.Name)
	return encodeDoc(c.stdout, ed.Doc(), *to, false)
}

// loadScripts starts a script host for the configured and extra
// scripts. The host lives as long as the editor.
func loadScripts(ed *editor.Editor, log *logging.Logger, cfg *config.Config, extra []string) error {
	files := append(append([]string(nil), cfg.Scripts.Files...), extra...)
	if len(files) == 0 {
		return nil
	}
	host, err := plugin.NewHost(ed, plugin.WithLogger(log))
	if err != nil {
		return err
	}
	if err := host.LoadFiles(files...); err != nil {
		return errors.Join(err, host.Close())
	}
	return nil
}

// multiFlag collects a repeated string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
