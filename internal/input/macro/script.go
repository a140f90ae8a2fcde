package macro

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseScript reads a line script. Blank lines and lines starting with
// "#" are skipped. A value starting with a double quote is unquoted with
// Go string syntax.
func ParseScript(r io.Reader) ([]Gesture, error) {
	var out []Gesture
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		g, err := ParseGesture(text)
		if err != nil {
			return nil, &ScriptError{Line: line, Err: err}
		}
		out = append(out, g)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseGesture parses one script line such as "key Mod-b" or
// "type \"two words\"".
func ParseGesture(text string) (Gesture, error) {
	word, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	g := Gesture{Kind: Kind(word), Value: strings.TrimSpace(rest)}
	if !g.Kind.valid() {
		return g, fmt.Errorf("%w: unknown keyword %q", ErrInvalidGesture, word)
	}
	if !g.Kind.takesValue() && g.Value != "" {
		return g, fmt.Errorf("%w: %s takes no value", ErrInvalidGesture, g.Kind)
	}
	if strings.HasPrefix(g.Value, `"`) {
		v, err := strconv.Unquote(g.Value)
		if err != nil {
			return g, fmt.Errorf("%w: bad quoted value: %v", ErrInvalidGesture, err)
		}
		g.Value = v
	}
	return g, g.Validate()
}

// WriteScript writes gestures as a line script.
func WriteScript(w io.Writer, gestures []Gesture) error {
	bw := bufio.NewWriter(w)
	for _, g := range gestures {
		if _, err := fmt.Fprintln(bw, g.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
