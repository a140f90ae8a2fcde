package config

import (
	"context"
	"sync"

	"github.com/dshills/folio/internal/config/watcher"
	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/logging"
)

// Reloader keeps a Config current with its file.
type Reloader struct {
	mu      sync.RWMutex
	current *Config

	path    string
	opts    []LoadOption
	watcher *watcher.Watcher
	bus     event.Bus
	logger  *logging.Logger
}

// NewReloader loads path and starts watching it. Reloads are published
// on bus, which may be nil.
func NewReloader(path string, bus event.Bus, log *logging.Logger, opts ...LoadOption) (*Reloader, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg, err := Load(path, opts...)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Null()
	}
	r := &Reloader{
		current: cfg,
		path:    path,
		opts:    opts,
		bus:     bus,
		logger:  log.WithComponent("config"),
	}
	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		r.logger.Warn("watching %s: %v", path, err)
	}))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	w.OnChange(func(watcher.Event) { r.Reload() })
	r.watcher = w
	return r, nil
}

// Config returns the latest valid configuration.
func (r *Reloader) Config() *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Reload rereads the file. An invalid file is logged and the previous
// configuration stays in effect.
func (r *Reloader) Reload() error {
	cfg, err := Load(r.path, r.opts...)
	if err != nil {
		r.logger.Warn("reload of %s failed: %v", r.path, err)
		return err
	}
	r.mu.Lock()
	r.current = cfg
	r.mu.Unlock()

	r.logger.Info("reloaded %s", r.path)
	if r.bus != nil {
		ev := event.NewEvent(topic.ConfigReloaded, cfg, "config")
		if err := r.bus.Publish(context.Background(), ev); err != nil {
			r.logger.Warn("publish %s: %v", topic.ConfigReloaded, err)
		}
	}
	return nil
}

// Follow keeps ed in step with the file: every reload published on the
// bus is applied with editor.Reconfigure. Cancel the subscription to
// stop following.
func (r *Reloader) Follow(ed *editor.Editor) (event.Subscription, error) {
	if r.bus == nil {
		return nil, ErrNoBus
	}
	return r.bus.Subscribe(topic.ConfigReloaded, event.AsHandler(func(_ context.Context, ev event.Event[*Config]) error {
		if err := ed.Reconfigure(ev.Payload.Settings()); err != nil {
			r.logger.Warn("applying %s: %v", r.path, err)
			return err
		}
		return nil
	}), event.WithPriority(event.PriorityHigh))
}

// Close stops watching.
func (r *Reloader) Close() error {
	return r.watcher.Close()
}
