package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return Event{}
	}
}

func TestWatchReportsWritesAndRenames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	if err := os.WriteFile(path, []byte("a"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	events := make(chan Event, 10)
	w.OnChange(func(ev Event) { events <- ev })
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	// Several writes coalesce.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte{byte('b' + i)}, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	ev := waitEvent(t, events)
	if ev.Path != path || ev.Op != OpWrite {
		t.Errorf("event = %+v", ev)
	}

	// Atomic save through a temporary file.
	tmp := filepath.Join(dir, ".folio.toml.tmp")
	if err := os.WriteFile(tmp, []byte("z"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	ev = waitEvent(t, events)
	if ev.Path != path || ev.Op != OpWrite {
		t.Errorf("event after rename = %+v", ev)
	}
}

func TestUnwatchedSiblingsAreIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	w, err := New(WithDebounce(10 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	events := make(chan Event, 10)
	w.OnChange(func(ev Event) { events <- ev })
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-events:
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
	if got := w.Files(); len(got) != 1 || got[0] != path {
		t.Errorf("Files = %v", got)
	}
	if err := w.Unwatch(path); err != nil {
		t.Fatal(err)
	}
	if len(w.Files()) != 0 {
		t.Error("Unwatch did not remove the file")
	}
}

func TestClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != ErrClosed {
		t.Errorf("second Close = %v", err)
	}
	if err := w.Watch(t.TempDir()); err != ErrClosed {
		t.Errorf("Watch after Close = %v", err)
	}
}
