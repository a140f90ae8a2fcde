package key

import "github.com/gdamore/tcell/v2"

// tcellKeys maps terminal key codes that have a named counterpart.
var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyArrowUp,
	tcell.KeyDown:       KeyArrowDown,
	tcell.KeyLeft:       KeyArrowLeft,
	tcell.KeyRight:      KeyArrowRight,
}

// tcellControl maps control codes that are not Ctrl plus a letter.
var tcellControl = map[tcell.Key]rune{
	tcell.KeyCtrlSpace:      ' ',
	tcell.KeyCtrlBackslash:  '\\',
	tcell.KeyCtrlRightSq:    ']',
	tcell.KeyCtrlUnderscore: '_',
}

// FromTcell converts a terminal key event. Control codes that terminals
// report as their own keys become a character with Ctrl.
func FromTcell(ev *tcell.EventKey) Event {
	mods := fromTcellMod(ev.Modifiers())
	k := ev.Key()

	// Named keys win over the control range since some share a code
	// (Tab is Ctrl-I).
	if named, ok := tcellKeys[k]; ok {
		return NewSpecialEvent(named, mods)
	}
	switch {
	case k == tcell.KeyRune:
		return NewRuneEvent(ev.Rune(), mods).Normalize()
	case k == tcell.KeyBacktab:
		return NewSpecialEvent(KeyTab, mods|ModShift)
	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		return NewSpecialEvent(KeyF1+Key(k-tcell.KeyF1), mods)
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return NewRuneEvent('a'+rune(k-tcell.KeyCtrlA), mods|ModCtrl)
	}
	if r, ok := tcellControl[k]; ok {
		return NewRuneEvent(r, mods|ModCtrl)
	}
	return NewSpecialEvent(KeyNone, mods)
}

func fromTcellMod(m tcell.ModMask) Modifier {
	var out Modifier
	for _, pair := range [...]struct {
		t tcell.ModMask
		m Modifier
	}{
		{tcell.ModShift, ModShift},
		{tcell.ModCtrl, ModCtrl},
		{tcell.ModAlt, ModAlt},
		{tcell.ModMeta, ModMeta},
	} {
		if m&pair.t != 0 {
			out |= pair.m
		}
	}
	return out
}
