package macro

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Macro is a named gesture sequence.
type Macro struct {
	Name     string    `json:"name" yaml:"name"`
	Gestures []Gesture `json:"gestures" yaml:"gestures"`
}

// Validate checks every gesture.
func (m *Macro) Validate() error {
	for i, g := range m.Gestures {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("gesture %d: %w", i+1, err)
		}
	}
	return nil
}

// Format is a macro file encoding.
type Format int

const (
	// FormatScript is the line script format.
	FormatScript Format = iota
	FormatYAML
	FormatJSON
)

// FormatFor picks the format from a file name.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatScript
	}
}

// Decode parses data in format f. Script macros take their name from
// the caller.
func Decode(data []byte, f Format, name string) (*Macro, error) {
	m := &Macro{Name: name}
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, m)
	case FormatJSON:
		err = json.Unmarshal(data, m)
	default:
		m.Gestures, err = ParseScript(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = name
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode renders m in format f.
func Encode(m *Macro, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(m)
	case FormatJSON:
		return json.MarshalIndent(m, "", "  ")
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# %s\n", m.Name)
		err := WriteScript(&buf, m.Gestures)
		return buf.Bytes(), err
	}
}

// LoadFile reads a macro. The file name without extension is the
// default name.
func LoadFile(path string) (*Macro, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read macro: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := Decode(data, FormatFor(path), name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// SaveFile writes m atomically, creating the directory if needed.
func SaveFile(m *Macro, path string) error {
	data, err := Encode(m, FormatFor(path))
	if err != nil {
		return fmt.Errorf("encode macro: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
