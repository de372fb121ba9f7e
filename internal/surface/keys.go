package surface

import (
	"github.com/gdamore/tcell/v2"

	"github.com/marklight/marklight/internal/input/key"
)

// Interrupt unblocks a pending PollKey, making it return ok=false. Safe to
// call from any goroutine.
func (t *Terminal) Interrupt() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// PollKey blocks for the next key press, absorbing resize events by
// redrawing. ok is false once the screen has been finalized or interrupted.
func (t *Terminal) PollKey() (key.Event, bool) {
	for {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			return translateKey(ev), true
		case *tcell.EventResize:
			t.screen.Sync()
			t.Render()
		case *tcell.EventInterrupt:
			return key.Event{}, false
		case nil:
			return key.Event{}, false
		}
	}
}

// translateKey converts a tcell key event into the editor's key model.
// Control characters surface as their letter with ModCtrl so bindings can
// match on "Ctrl+q" rather than raw codes.
func translateKey(ev *tcell.EventKey) key.Event {
	mods := translateMods(ev.Modifiers())
	k := ev.Key()
	if k == tcell.KeyRune {
		return key.NewRuneEvent(ev.Rune(), mods)
	}
	if special := translateSpecial(k); special != key.KeyNone {
		return key.NewSpecialEvent(special, mods)
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return key.NewRuneEvent(rune('a'+k-tcell.KeyCtrlA), mods|key.ModCtrl)
	}
	return key.NewSpecialEvent(key.KeyNone, mods)
}

func translateSpecial(k tcell.Key) key.Key {
	switch k {
	case tcell.KeyEnter:
		return key.KeyEnter
	case tcell.KeyTab:
		return key.KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.KeyBackspace
	case tcell.KeyDelete:
		return key.KeyDelete
	case tcell.KeyEscape:
		return key.KeyEscape
	case tcell.KeyHome:
		return key.KeyHome
	case tcell.KeyEnd:
		return key.KeyEnd
	case tcell.KeyPgUp:
		return key.KeyPageUp
	case tcell.KeyPgDn:
		return key.KeyPageDown
	case tcell.KeyUp:
		return key.KeyUp
	case tcell.KeyDown:
		return key.KeyDown
	case tcell.KeyLeft:
		return key.KeyLeft
	case tcell.KeyRight:
		return key.KeyRight
	default:
		return key.KeyNone
	}
}

func translateMods(m tcell.ModMask) key.Modifier {
	mods := key.ModNone
	if m&tcell.ModShift != 0 {
		mods |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= key.ModMeta
	}
	return mods
}
