package display

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vtcon/internal/input"
)

// convertKey converts a tcell key event. Keys the console has no use for
// report false.
func convertKey(e *tcell.EventKey) (input.Event, bool) {
	mod := convertMod(e.Modifiers())
	k := e.Key()

	switch {
	case k == tcell.KeyRune:
		return input.RuneEvent(e.Rune(), mod), true
	case k == tcell.KeyEnter:
		return input.KeyEvent(input.KeyEnter, mod), true
	case k == tcell.KeyTab:
		return input.KeyEvent(input.KeyTab, mod), true
	case k == tcell.KeyBackspace || k == tcell.KeyBackspace2:
		return input.KeyEvent(input.KeyBackspace, mod), true
	case k == tcell.KeyEscape:
		return input.KeyEvent(input.KeyEscape, mod), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		// Control chords arrive as their own key codes; fold them back into
		// a rune plus ModCtrl so bindings see one shape.
		return input.RuneEvent(rune('a'+(k-tcell.KeyCtrlA)), mod|input.ModCtrl), true
	}

	if key, ok := specialKeys[k]; ok {
		return input.KeyEvent(key, mod), true
	}
	return input.Event{}, false
}

var specialKeys = map[tcell.Key]input.Key{
	tcell.KeyUp:    input.KeyUp,
	tcell.KeyDown:  input.KeyDown,
	tcell.KeyLeft:  input.KeyLeft,
	tcell.KeyRight: input.KeyRight,
	tcell.KeyPgUp:  input.KeyPageUp,
	tcell.KeyPgDn:  input.KeyPageDown,
	tcell.KeyHome:  input.KeyHome,
	tcell.KeyEnd:   input.KeyEnd,
}

// convertMod converts a tcell modifier mask.
func convertMod(m tcell.ModMask) input.Mod {
	var result input.Mod
	if m&tcell.ModShift != 0 {
		result |= input.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= input.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= input.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= input.ModMeta
	}
	return result
}
