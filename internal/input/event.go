package input

import (
	"strings"
	"unicode"
)

// Key identifies a key press.
type Key uint8

// Keys the console distinguishes. Everything else arrives as KeyRune or is
// dropped by the backend.
const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
)

var keyNames = [...]string{
	KeyNone:      "None",
	KeyRune:      "Rune",
	KeyEnter:     "Enter",
	KeyBackspace: "BS",
	KeyTab:       "Tab",
	KeyEscape:    "Esc",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyPageUp:    "PgUp",
	KeyPageDown:  "PgDn",
	KeyHome:      "Home",
	KeyEnd:       "End",
}

// String returns the key name.
func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "Unknown"
}

// Mod is a modifier key mask.
type Mod uint8

const (
	// ModNone indicates no modifiers.
	ModNone Mod = 0

	// ModShift indicates the Shift key.
	ModShift Mod = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key.
	ModAlt

	// ModMeta indicates the Meta key.
	ModMeta
)

// Has reports whether m contains mod.
func (m Mod) Has(mod Mod) bool {
	return m&mod != 0
}

// Event is a single key press.
type Event struct {
	Key  Key
	Rune rune
	Mod  Mod
}

// RuneEvent creates a character event.
func RuneEvent(r rune, mod Mod) Event {
	return Event{Key: KeyRune, Rune: r, Mod: mod}
}

// KeyEvent creates an event for a special key.
func KeyEvent(k Key, mod Mod) Event {
	return Event{Key: k, Mod: mod}
}

// IsChar reports whether e is a printable character with no Ctrl, Alt or
// Meta held. Shift is part of the character.
func (e Event) IsChar() bool {
	return e.Key == KeyRune && unicode.IsPrint(e.Rune) && !e.Mod.Has(ModCtrl|ModAlt|ModMeta)
}

// Digit returns the value of a digit key.
func (e Event) Digit() (int, bool) {
	if e.Key != KeyRune || e.Rune < '0' || e.Rune > '9' {
		return 0, false
	}
	return int(e.Rune - '0'), true
}

// String returns a canonical representation such as "C-l", "A-3" or "PgUp".
func (e Event) String() string {
	var parts []string
	if e.Mod.Has(ModCtrl) {
		parts = append(parts, "C")
	}
	if e.Mod.Has(ModAlt) {
		parts = append(parts, "A")
	}
	if e.Mod.Has(ModMeta) {
		parts = append(parts, "M")
	}
	if e.Mod.Has(ModShift) && e.Key != KeyRune {
		parts = append(parts, "S")
	}

	name := e.Key.String()
	if e.Key == KeyRune {
		if e.Rune == ' ' {
			name = "Space"
		} else {
			name = string(e.Rune)
		}
	}
	return strings.Join(append(parts, name), "-")
}
