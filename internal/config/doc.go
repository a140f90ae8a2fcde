// Package config loads folio's settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, ~/.config/folio/folio.toml unless another path is given
//  3. FOLIO_* environment variables (see loader.DefaultEnvMapping)
//
// A file looks like:
//
//	"@include" = ["shared.toml"]
//
//	[editor]
//	headingLevels = 4
//
//	[history]
//	depth = 200
//	newGroupDelay = "500ms"
//
//	[inputRules]
//	disable = ["emDash"]
//
//	[keymap]
//	files = ["keys.yaml"]
//	[keymap.bindings]
//	"Mod-e" = "setCodeBlock"
//
//	[logging]
//	level = "debug"
//
// Unknown keys are errors. Relative paths are resolved against the
// directory of the file that names them.
//
// A Reloader watches the file and publishes topic.ConfigReloaded with the
// new *Config after every successful reload.
package config
