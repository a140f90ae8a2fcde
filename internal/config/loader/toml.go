package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// MaxIncludeDepth bounds nested @include directives.
const MaxIncludeDepth = 8

// ErrIncludeDepth is returned when includes nest deeper than MaxIncludeDepth.
var ErrIncludeDepth = errors.New("include depth exceeded")

// TOMLLoader loads a TOML file. A top-level "@include" key names files,
// relative to the including file, whose values the file overrides.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a loader for path on the OS file system.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{fs: OSFS{}, path: path}
}

// NewTOMLLoaderWithFS creates a loader reading from fsys.
func NewTOMLLoaderWithFS(fsys FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fsys, path: path}
}

// Load reads the file and its includes.
func (l *TOMLLoader) Load() (map[string]any, error) {
	return l.load(l.path, MaxIncludeDepth)
}

func (l *TOMLLoader) load(file string, depth int) (map[string]any, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepth, file)
	}
	data, err := l.fs.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", file, err)
	}
	config, err := Parse(file, data)
	if err != nil {
		return nil, err
	}

	includes, err := includeList(config["@include"])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	delete(config, "@include")

	merged := map[string]any{}
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(file), inc)
		}
		sub, err := l.load(inc, depth-1)
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, sub)
	}
	return DeepMerge(merged, config), nil
}

func includeList(v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("@include entries must be strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("@include must be a string or an array of strings, got %T", v)
	}
}

// Parse decodes TOML data. source names the data in errors.
func Parse(source string, data []byte) (map[string]any, error) {
	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			pe.Line, pe.Column = decErr.Position()
		}
		return nil, pe
	}
	if config == nil {
		config = map[string]any{}
	}
	return config, nil
}

// ParseError reports malformed configuration.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DeepMerge merges src into dst and returns dst. Nested tables merge
// recursively; any other src value replaces the dst value.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			dst[key] = srcVal
		}
	}
	return dst
}
