package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/folio/internal/config/loader"
	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/history"
	"github.com/dshills/folio/internal/input/keymap"
	"github.com/dshills/folio/internal/inputrules"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/schemas/markdown"
)

// FileName is the default configuration file name.
const FileName = "folio.toml"

// Config holds every folio setting.
type Config struct {
	Editor     EditorConfig     `toml:"editor"`
	History    HistoryConfig    `toml:"history"`
	InputRules InputRulesConfig `toml:"inputRules"`
	Keymap     KeymapConfig     `toml:"keymap"`
	Schema     SchemaConfig     `toml:"schema"`
	Logging    LoggingConfig    `toml:"logging"`
	Scripts    ScriptsConfig    `toml:"scripts"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// EditorConfig configures the editor facade.
type EditorConfig struct {
	HeadingLevels int  `toml:"headingLevels"`
	ReadOnly      bool `toml:"readOnly"`
	// Platform is "mac", "other" or "auto"; it decides what "Mod" means.
	Platform string `toml:"platform"`
}

// HistoryConfig configures undo.
type HistoryConfig struct {
	Depth         int      `toml:"depth"`
	NewGroupDelay Duration `toml:"newGroupDelay"`
}

// InputRulesConfig selects input rules.
type InputRulesConfig struct {
	Enabled     bool     `toml:"enabled"`
	MaxLookback int      `toml:"maxLookback"`
	Disable     []string `toml:"disable"`
	// Enable, when non-empty, keeps only the named rules.
	Enable []string `toml:"enable"`
}

// KeymapConfig adds key bindings.
type KeymapConfig struct {
	// Bindings maps chords to command names.
	Bindings map[string]string `toml:"bindings"`
	// Files are JSON or YAML keymap files.
	Files []string `toml:"files"`
}

// SchemaConfig selects the document schema.
type SchemaConfig struct {
	// File is a YAML schema declaration. Empty means the markdown schema.
	File string `toml:"file"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ScriptsConfig lists Lua scripts to load at startup.
type ScriptsConfig struct {
	Files []string `toml:"files"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Editor:     EditorConfig{HeadingLevels: editor.DefaultHeadingLevels, Platform: "auto"},
		History:    HistoryConfig{Depth: history.DefaultMaxEntries},
		InputRules: InputRulesConfig{Enabled: true, MaxLookback: inputrules.DefaultMaxLookback},
		Keymap:     KeymapConfig{Bindings: map[string]string{}},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns ~/.config/folio/folio.toml, honoring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "folio", FileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "folio", FileName)
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFS reads files from fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) { o.fs = fsys }
}

// WithEnv replaces the environment layer. A nil loader disables it.
func WithEnv(l loader.Loader) LoadOption {
	return func(o *loadOptions) { o.env = l }
}

// Load reads the configuration at path over the defaults and applies
// environment overrides. A missing file is not an error. An empty path
// means DefaultPath.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{fs: loader.OSFS{}, env: loader.NewEnvLoader()}
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		path = DefaultPath()
	}

	file, err := loader.NewTOMLLoaderWithFS(o.fs, path).Load()
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if file != nil {
		cfg.Path = path
	}
	if err := cfg.merge(path, file); err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))

	if o.env != nil {
		env, err := o.env.Load()
		if err != nil {
			return nil, err
		}
		if err := cfg.merge("environment", env); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults without consulting files or
// the environment.
func Parse(data []byte) (*Config, error) {
	values, err := loader.Parse("<input>", data)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := cfg.merge("<input>", values); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// merge decodes values onto c. Keys absent from values keep their
// current setting.
func (c *Config) merge(source string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%s: %w: %s", source, ErrInvalid, strict.String())
		}
		return fmt.Errorf("%s: %w", source, err)
	}
	return nil
}

func (c *Config) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Schema.File = abs(c.Schema.File)
	for i, f := range c.Keymap.Files {
		c.Keymap.Files[i] = abs(f)
	}
	for i, f := range c.Scripts.Files {
		c.Scripts.Files[i] = abs(f)
	}
}

// Validate checks ranges and enumerations. It returns every problem
// found, joined.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}
	if c.Editor.HeadingLevels < 1 || c.Editor.HeadingLevels > 6 {
		invalid("editor.headingLevels", "must be between 1 and 6", c.Editor.HeadingLevels)
	}
	switch c.Editor.Platform {
	case "", "auto", "mac", "other":
	default:
		invalid("editor.platform", `must be "auto", "mac" or "other"`, c.Editor.Platform)
	}
	if c.History.Depth < 1 {
		invalid("history.depth", "must be positive", c.History.Depth)
	}
	if c.History.NewGroupDelay.Duration < 0 {
		invalid("history.newGroupDelay", "must not be negative", c.History.NewGroupDelay)
	}
	if c.InputRules.MaxLookback < 1 {
		invalid("inputRules.maxLookback", "must be positive", c.InputRules.MaxLookback)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		invalid("logging.level", "unknown level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		invalid("logging.format", `must be "text" or "json"`, c.Logging.Format)
	}
	return errors.Join(errs...)
}

// Marshal encodes c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Logger builds the logger the configuration describes.
func (c *Config) Logger() *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(c.Logging.Level),
		Format: logging.ParseFormat(c.Logging.Format),
		Output: os.Stderr,
		Prefix: "folio",
	})
}

// LoadSchema returns the configured schema.
func (c *Config) LoadSchema() (*model.Schema, error) {
	if c.Schema.File == "" {
		return markdown.Schema(), nil
	}
	data, err := os.ReadFile(c.Schema.File)
	if err != nil {
		return nil, fmt.Errorf("schema file: %w", err)
	}
	s, err := model.LoadSchemaYAML(data)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", c.Schema.File, err)
	}
	return s, nil
}

// Settings returns the part of the configuration a running editor can
// pick up without being rebuilt.
func (c *Config) Settings() editor.Settings {
	return editor.Settings{
		MaxUndoEntries: c.History.Depth,
		InputRules:     c.InputRules.Enabled,
		MaxLookback:    c.InputRules.MaxLookback,
		DisabledRules:  c.InputRules.Disable,
		EnabledRules:   c.InputRules.Enable,
		UserBindings:   c.Keymap.Bindings,
		ReadOnly:       c.Editor.ReadOnly,
	}
}

// EditorOptions translates the settings into editor options. Keymap files
// are read here.
func (c *Config) EditorOptions(log *logging.Logger, bus event.Bus) ([]editor.Option, error) {
	s, err := c.LoadSchema()
	if err != nil {
		return nil, err
	}
	opts := []editor.Option{
		editor.WithSchema(s),
		editor.WithLogger(log),
		editor.WithHeadingLevels(c.Editor.HeadingLevels),
		editor.WithMaxUndoEntries(c.History.Depth),
		editor.WithNewGroupDelay(c.History.NewGroupDelay.Duration),
		editor.WithInputRules(c.InputRules.Enabled),
		editor.WithMaxLookback(c.InputRules.MaxLookback),
		editor.WithDisabledRules(c.InputRules.Disable...),
		editor.WithEnabledRules(c.InputRules.Enable...),
		editor.WithUserBindings(c.Keymap.Bindings),
	}
	if bus != nil {
		opts = append(opts, editor.WithBus(bus))
	}
	if c.Editor.ReadOnly {
		opts = append(opts, editor.WithReadOnly())
	}
	switch c.Editor.Platform {
	case "mac":
		opts = append(opts, editor.WithMac(true))
	case "other":
		opts = append(opts, editor.WithMac(false))
	}

	for _, f := range c.Keymap.Files {
		km, err := keymap.LoadFile(f)
		if err != nil {
			return nil, err
		}
		opts = append(opts, editor.WithKeymaps(km))
	}
	return opts, nil
}
