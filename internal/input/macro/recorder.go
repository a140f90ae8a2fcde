package macro

import (
	"sort"
	"sync"

	"github.com/dshills/folio/internal/input/key"
)

// Recorder captures gestures into named macros.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	name      string
	gestures  []Gesture
	macros    map[string]*Macro
}

// NewRecorder creates a recorder with no stored macros.
func NewRecorder() *Recorder {
	return &Recorder{macros: make(map[string]*Macro)}
}

// Start begins a recording called name.
func (r *Recorder) Start(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return ErrAlreadyRecording
	}
	r.recording = true
	r.name = name
	r.gestures = nil
	return nil
}

// Stop ends the recording and stores it. An empty recording is returned
// but not stored.
func (r *Recorder) Stop() (*Macro, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return nil, ErrNotRecording
	}
	r.recording = false
	m := &Macro{Name: r.name, Gestures: r.gestures}
	r.gestures = nil
	if len(m.Gestures) > 0 {
		r.macros[m.Name] = m
	}
	return m, nil
}

// IsRecording reports whether a recording is active.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Record appends g to the active recording. Consecutive text gestures
// are coalesced.
func (r *Recorder) Record(g Gesture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	if n := len(r.gestures); n > 0 && g.Kind == KindText && r.gestures[n-1].Kind == KindText {
		r.gestures[n-1].Value += g.Value
		return
	}
	r.gestures = append(r.gestures, g)
}

// Get returns a copy of the macro called name, or nil.
func (r *Recorder) Get(name string) *Macro {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.macros[name]
	if !ok {
		return nil
	}
	return &Macro{Name: m.Name, Gestures: append([]Gesture(nil), m.Gestures...)}
}

// Set stores m, replacing a macro of the same name.
func (r *Recorder) Set(m *Macro) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.macros[m.Name] = &Macro{Name: m.Name, Gestures: append([]Gesture(nil), m.Gestures...)}
}

// Delete removes the macro called name.
func (r *Recorder) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.macros, name)
}

// Names lists stored macros in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.macros))
	for n := range r.macros {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Wrap returns a Target that records gestures before forwarding them to
// t.
func (r *Recorder) Wrap(t Target) Target {
	return &recording{Target: t, rec: r}
}

type recording struct {
	Target
	rec *Recorder
}

func (w *recording) HandleKey(ev key.Event) bool {
	w.rec.Record(Key(ev))
	return w.Target.HandleKey(ev)
}

func (w *recording) HandleTextInput(text string) error {
	w.rec.Record(Text(text))
	return w.Target.HandleTextInput(text)
}

func (w *recording) PasteHTML(src string) error {
	w.rec.Record(Paste(src))
	return w.Target.PasteHTML(src)
}

func (w *recording) Exec(name string) (bool, error) {
	w.rec.Record(Exec(name))
	return w.Target.Exec(name)
}

func (w *recording) Undo() bool {
	w.rec.Record(Undo())
	return w.Target.Undo()
}

func (w *recording) Redo() bool {
	w.rec.Record(Redo())
	return w.Target.Redo()
}
