// Package macro records and replays editor gestures.
//
// A Macro is a named sequence of gestures: key chords, typed text,
// pasted markup, command invocations, undo and redo. Macros are the
// unit of keystroke scripts replayed by the command line tool and of
// recordings taken from a live editor.
//
// # Recording
//
// A Recorder wraps a Target and captures every gesture forwarded
// through it while a recording is active:
//
//	rec := macro.NewRecorder()
//	t := rec.Wrap(ed)
//	rec.Start("greeting")
//	t.HandleTextInput("hello")
//	t.HandleKey(key.MustParse("Mod-b"))
//	m, _ := rec.Stop()
//
// # Playback
//
// A Player feeds a macro to a Target and reports gestures that had no
// effect:
//
//	rep, err := macro.NewPlayer().Play(ctx, m, 3, ed)
//
// # Files
//
// Macros are stored as YAML or JSON, chosen by file extension, or as
// line scripts:
//
//	# comment
//	type hello
//	key Mod-b
//	type "quoted text keeps  spaces\n"
//	paste <p>pasted</p>
//	exec setHeading1
//	undo
//	redo
//
// All types are safe for concurrent use.
package macro
