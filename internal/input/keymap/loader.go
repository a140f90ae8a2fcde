package keymap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Decode reads a keymap. YAML is chosen by a ".yaml" or ".yml" name,
// JSON otherwise. The priority defaults to PriorityUser.
func Decode(data []byte, name string) (*Keymap, error) {
	km := &Keymap{Priority: PriorityUser}
	var err error
	if isYAML(name) {
		err = yaml.Unmarshal(data, km)
	} else {
		err = json.Unmarshal(data, km)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding keymap: %w", err)
	}
	return km, nil
}

// LoadFile reads a keymap file. The name defaults to the file name
// without extension and the source to "file:<path>".
func LoadFile(path string) (*Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keymap: %w", err)
	}
	km, err := Decode(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if km.Name == "" {
		km.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if km.Source == "" {
		km.Source = "file:" + path
	}
	if err := km.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}

// SaveFile writes k as YAML or JSON following the extension of path.
func (k *Keymap) SaveFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(k)
	} else {
		data, err = json.MarshalIndent(k, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding keymap: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing keymap: %w", err)
	}
	return nil
}

// UserKeymap builds the "user" layer from chord to command pairs, in
// sorted chord order.
func UserKeymap(bindings map[string]string) *Keymap {
	chords := make([]string, 0, len(bindings))
	for chord := range bindings {
		chords = append(chords, chord)
	}
	sort.Strings(chords)

	km := New(UserKeymapName, PriorityUser)
	km.Source = "config"
	for _, chord := range chords {
		km.Bindings = append(km.Bindings, Binding{Keys: chord, Action: bindings[chord], Category: "User"})
	}
	return km
}
