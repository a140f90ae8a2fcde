package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/input/macro"
)

// shell edits one document interactively. Each input line is a macro
// gesture ("type", "key", "exec", "paste", "undo", "redo") or one of
// "show" and "quit". The document is printed when the input ends. With
// -watch, edits to the configuration file take
// effect while the shell runs.
func (c *cli) shell(args []string) error {
	fs := c.flags("shell", "")
	in := fs.String("in", "", "Starting document (JSON or HTML); empty starts blank")
	to := fs.String("to", formatHTML, "Output format for show (json, html)")
	watch := fs.Bool("watch", true, "Apply configuration file changes while running")
	var scripts multiFlag
	fs.Var(&scripts, "script", "Lua script to load (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
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

	log := c.logger(cfg)
	bus := event.NewBus(event.WithLogger(log))
	defer bus.Close()

	opts, err := cfg.EditorOptions(log, bus)
	if err != nil {
		return err
	}
	if *in != "" {
		s, err := cfg.LoadSchema()
		if err != nil {
			return err
		}
		doc, err := c.readDoc(s, *in, formatAuto)
		if err != nil {
			return err
		}
		opts = append(opts, editor.WithDoc(doc))
	}
	ed, err := editor.New(opts...)
	if err != nil {
		return err
	}
	if err := loadScripts(ed, log, cfg, scripts); err != nil {
		return err
	}

	if *watch && cfg.Path != "" {
		r, err := config.NewReloader(cfg.Path, bus, log)
		if err != nil {
			return err
		}
		defer r.Close()
		if _, err := r.Follow(ed); err != nil {
			return err
		}
		log.Debug("watching %s", cfg.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	player := macro.NewPlayer(macro.WithPlatform(ed.Keymaps().Mac()))

	sc := bufio.NewScanner(c.stdin)
loop:
	for line := 1; sc.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "" || strings.HasPrefix(text, "#"):
			continue
		case text == "quit" || text == "exit":
			break loop
		case text == "show":
			if err := encodeDoc(c.stdout, ed.Doc(), *to, true); err != nil {
				return err
			}
			continue
		}
		g, err := macro.ParseGesture(text)
		if err != nil {
			fmt.Fprintf(c.stderr, "line %d: %v\n", line, err)
			continue
		}
		m := &macro.Macro{Name: "shell", Gestures: []macro.Gesture{g}}
		if _, err := player.Play(ctx, m, 1, ed); err != nil {
			fmt.Fprintf(c.stderr, "line %d: %v\n", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return encodeDoc(c.stdout, ed.Doc(), *to, true)
}
