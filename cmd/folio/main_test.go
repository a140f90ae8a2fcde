package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// folio runs the command with an isolated configuration.
func folio(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUsage(t *testing.T) {
	_, errOut, code := folio(t, "")
	if code != 2 || !strings.Contains(errOut, "Usage: folio") {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
	_, errOut, code = folio(t, "", "convrt")
	if code != 2 || !strings.Contains(errOut, `Did you mean "convert"?`) {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
}

func TestVersion(t *testing.T) {
	out, _, code := folio(t, "", "version")
	if code != 0 || !strings.HasPrefix(out, "folio dev\n") {
		t.Errorf("code %d, stdout %q", code, out)
	}
}

func TestConvert(t *testing.T) {
	src := `<h2>Hi</h2><p>a <strong>b</strong></p>`
	out, errOut, code := folio(t, src, "convert", "-compact")
	if code != 0 {
		t.Fatalf("convert failed: %s", errOut)
	}
	want := `{"type":"doc","content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Hi"}]},` +
		`{"type":"paragraph","content":[{"type":"text","text":"a "},{"type":"text","text":"b","marks":[{"type":"strong"}]}]}]}`
	if strings.TrimSpace(out) != want {
		t.Errorf("json = %s", out)
	}

	back, errOut, code := folio(t, out, "convert")
	if code != 0 {
		t.Fatalf("convert back failed: %s", errOut)
	}
	if strings.TrimSpace(back) != src {
		t.Errorf("html = %s", back)
	}

	_, errOut, code = folio(t, src, "convert", "-to", "pdf")
	if code != 1 || !strings.Contains(errOut, `invalid -to "pdf"`) {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"type":"doc","content":[{"type":"paragraph"}]}`)
	bad := writeFile(t, dir, "bad.json", `{"type":"doc","content":[{"type":"text","text":"loose"}]}`)

	out, _, code := folio(t, "", "validate", good)
	if code != 0 || out != good+": ok\n" {
		t.Errorf("code %d, stdout %q", code, out)
	}
	out, errOut, code := folio(t, "", "validate", good, bad)
	if code != 1 || !strings.Contains(out, bad+": ") || !strings.Contains(errOut, "1 of 2 documents invalid") {
		t.Errorf("code %d, stdout %q, stderr %q", code, out, errOut)
	}
}

func TestReplay(t *testing.T) {
	dir := t.TempDir()
	keys := writeFile(t, dir, "keys.txt", "exec setHeading1\ntype Title\nkey Enter\ntype body\n")
	out, errOut, code := folio(t, "", "replay", keys)
	if code != 0 {
		t.Fatalf("replay failed: %s", errOut)
	}
	if strings.TrimSpace(out) != "<h1>Title</h1><p>body</p>" {
		t.Errorf("html = %q", out)
	}

	start := writeFile(t, dir, "start.html", "<p>x</p>")
	more := writeFile(t, dir, "more.txt", "type y\n")
	out, _, code = folio(t, "", "replay", "-in", start, "-n", "2", more)
	if code != 0 || strings.TrimSpace(out) != "<p>yyx</p>" {
		t.Errorf("code %d, html %q", code, out)
	}

	_, errOut, code = folio(t, "", "replay")
	if code != 2 || !strings.Contains(errOut, "Usage: folio replay") {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
}

func TestReplayWithScript(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "arrows.lua", `
local folio = require("folio")
folio.rule{ name = "arrow", pattern = "->$", replace = "→" }
`)
	keys := writeFile(t, dir, "keys.txt", "type a->\n")
	out, errOut, code := folio(t, "", "replay", "-script", script, keys)
	if code != 0 {
		t.Fatalf("replay failed: %s", errOut)
	}
	if strings.TrimSpace(out) != "<p>a→</p>" {
		t.Errorf("html = %q", out)
	}
}

func TestCommandsAndKeys(t *testing.T) {
	out, _, code := folio(t, "", "commands", "-n", "1", "strong")
	if code != 0 || out != "* toggleStrong\n" {
		t.Errorf("code %d, stdout %q", code, out)
	}
	export := filepath.Join(t.TempDir(), "strong.yaml")
	out, _, code = folio(t, "", "keys", "-export", export, "toggleStrong")
	if code != 0 || !strings.Contains(out, "toggleStrong") {
		t.Errorf("code %d, stdout %q", code, out)
	}
	data, err := os.ReadFile(export)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "action: toggleStrong") {
		t.Errorf("exported keymap = %s", data)
	}
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "folio.toml", "[history]\ndepth = 7\n")
	out, errOut, code := folio(t, "", "-config", path, "config")
	if code != 0 {
		t.Fatalf("config failed: %s", errOut)
	}
	if !strings.Contains(out, "depth = 7") {
		t.Errorf("config = %s", out)
	}
	_, errOut, code = folio(t, "", "-config", path, "-log-level", "loud", "config")
	if code != 1 || !strings.Contains(errOut, "logging.level") {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
}

func TestShell(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "folio.toml", "[inputRules]\ndisable = [\"heading\"]\n")
	in := "type # Hi\nshow\nexec setHeading2\nkey Enter\ntype x\njump\nquit\ntype ignored\n"
	out, errOut, code := folio(t, in, "-c", cfg, "shell")
	if code != 0 {
		t.Fatalf("shell failed: %s", errOut)
	}
	want := "<p># Hi</p>\n<h2># Hi</h2><p>x</p>\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
	if !strings.Contains(errOut, "line 6:") || !strings.Contains(errOut, "unknown keyword") {
		t.Errorf("stderr = %q", errOut)
	}

	_, errOut, code = folio(t, "", "shell", "extra")
	if code != 2 || !strings.Contains(errOut, "Usage: folio shell") {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writers and readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestShellFollowsConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	cfg := writeFile(t, dir, "folio.toml", "[inputRules]\nenabled = false\n")

	stdin, input := io.Pipe()
	var out, errOut syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run([]string{"-c", cfg, "shell"}, stdin, &out, &errOut)
	}()
	send := func(line string) {
		t.Helper()
		if _, err := io.WriteString(input, line+"\n"); err != nil {
			t.Fatal(err)
		}
	}

	send(`type "**a** "`)
	send("show")
	waitFor := func(b *syncBuffer, s string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !strings.Contains(b.String(), s) {
			if time.Now().After(deadline) {
				t.Fatalf("waiting for %q; stderr:\n%s", s, errOut.String())
			}
			time.Sleep(20 * time.Millisecond)
		}
	}
	waitFor(&out, "<p>**a** </p>")
	writeFile(t, dir, "folio.toml", "[inputRules]\nenabled = true\n")
	waitFor(&errOut, "settings changed")
	send("type **b**")
	input.Close()

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("shell exited %d: %s", code, errOut.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not exit")
	}
	if got := out.String(); !strings.HasSuffix(got, "<p>**a** <strong>b</strong></p>\n") {
		t.Errorf("html = %q", got)
	}
}
