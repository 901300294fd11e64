package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modal/internal/input/key"
)

var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyF1:         key.KeyF1,
	tcell.KeyF2:         key.KeyF2,
	tcell.KeyF3:         key.KeyF3,
	tcell.KeyF4:         key.KeyF4,
	tcell.KeyF5:         key.KeyF5,
	tcell.KeyF6:         key.KeyF6,
	tcell.KeyF7:         key.KeyF7,
	tcell.KeyF8:         key.KeyF8,
	tcell.KeyF9:         key.KeyF9,
	tcell.KeyF10:        key.KeyF10,
	tcell.KeyF11:        key.KeyF11,
	tcell.KeyF12:        key.KeyF12,
}

// ConvertKey converts a tcell key event. It reports false for keys that
// have no key.Event form.
func ConvertKey(ev *tcell.EventKey) (key.Event, bool) {
	mods := convertModifiers(ev.Modifiers())

	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		return key.NewRuneEvent(ev.Rune(), mods), true
	case k == tcell.KeyBacktab:
		return key.Special(key.KeyTab, mods.With(key.ModShift)), true
	case k == tcell.KeyCtrlSpace:
		return key.NewRuneEvent(' ', mods.With(key.ModCtrl)), true
	default:
		if sk, ok := specialKeys[k]; ok {
			// tcell reports Ctrl for the control codes that double as
			// Enter, Tab and Backspace.
			if k == tcell.KeyEnter || k == tcell.KeyTab || k == tcell.KeyBackspace {
				mods = mods.Without(key.ModCtrl)
			}
			return key.Special(sk, mods), true
		}
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			return key.NewRuneEvent(rune('a'+int(k-tcell.KeyCtrlA)), mods.With(key.ModCtrl)), true
		}
	}
	return key.Event{}, false
}

func convertModifiers(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}
