package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every folio environment variable.
const EnvPrefix = "FOLIO_"

// EnvLoader maps environment variables onto configuration paths.
type EnvLoader struct {
	mapping map[string]string
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a loader with the default variable mapping.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{mapping: DefaultEnvMapping(), lookup: os.LookupEnv}
}

// NewEnvLoaderWithLookup uses lookup instead of the process environment.
func NewEnvLoaderWithLookup(lookup func(string) (string, bool)) *EnvLoader {
	return &EnvLoader{mapping: DefaultEnvMapping(), lookup: lookup}
}

// DefaultEnvMapping returns the variables folio understands and the
// dotted configuration path each one sets.
func DefaultEnvMapping() map[string]string {
	return map[string]string{
		EnvPrefix + "LOG_LEVEL":           "logging.level",
		EnvPrefix + "LOG_FORMAT":          "logging.format",
		EnvPrefix + "HISTORY_DEPTH":       "history.depth",
		EnvPrefix + "HISTORY_GROUP_DELAY": "history.newGroupDelay",
		EnvPrefix + "HEADING_LEVELS":      "editor.headingLevels",
		EnvPrefix + "READ_ONLY":           "editor.readOnly",
		EnvPrefix + "INPUT_RULES":         "inputRules.enabled",
		EnvPrefix + "INPUT_RULES_DISABLE": "inputRules.disable",
		EnvPrefix + "MAX_LOOKBACK":        "inputRules.maxLookback",
		EnvPrefix + "SCHEMA":              "schema.file",
		EnvPrefix + "KEYMAP_FILES":        "keymap.files",
		EnvPrefix + "SCRIPTS":             "scripts.files",
	}
}

// AddMapping maps another variable.
func (l *EnvLoader) AddMapping(env, path string) {
	l.mapping[env] = path
}

// Load returns the mapped variables that are set. Empty values count as
// set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			SetPath(config, path, parseValue(val))
		}
	}
	return config, nil
}

// parseValue converts booleans, integers and JSON arrays. A
// comma-separated value becomes a list; anything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.HasPrefix(s, "[") {
		var v []any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return s
}

// SetPath sets a value in nested maps by dotted path, creating
// intermediate tables.
func SetPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
