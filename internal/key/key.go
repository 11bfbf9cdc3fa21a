package key

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Mode is the highlight state of a key or tile.
type Mode string

// Highlight modes
const (
	ModeOpen     Mode = "OPEN"
	ModeMiss     Mode = "MISS"
	ModeHit      Mode = "HIT"
	ModeBullseye Mode = "BULLSEYE"
	ModeError    Mode = "ERROR"
)

// modePrecedence is ordered by index, not by severity. ERROR ranks below OPEN.
var modePrecedence = []Mode{ModeError, ModeOpen, ModeMiss, ModeHit, ModeBullseye}

// MaxMode returns whichever of m1 and m2 sits later in the precedence list.
func MaxMode(m1, m2 Mode) Mode {
	idx := max(slices.Index(modePrecedence, m1), slices.Index(modePrecedence, m2))
	if idx < 0 {
		idx = 0
	}
	return modePrecedence[idx]
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return slices.Contains(modePrecedence, m)
}

// Char is a lowercase Latin letter or Blank.
type Char byte

// Blank is the empty tile character.
const Blank Char = ' '

// AllChars lists the 26 letters in alphabetical order.
var AllChars = func() []Char {
	out := make([]Char, 0, 26)
	for c := Char('a'); c <= 'z'; c++ {
		out = append(out, c)
	}
	return out
}()

// IsLetter reports whether c is one of a-z.
func (c Char) IsLetter() bool {
	return c >= 'a' && c <= 'z'
}

// Index returns the 0..25 alphabet position, or -1 for non-letters.
func (c Char) Index() int {
	if !c.IsLetter() {
		return -1
	}
	return int(c - 'a')
}

func (c Char) String() string {
	return string(rune(c))
}

func (c Char) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Char) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s) != 1 {
		return fmt.Errorf("invalid char %q", s)
	}
	ch := Char(s[0])
	if ch != Blank && !ch.IsLetter() {
		return fmt.Errorf("invalid char %q", s)
	}
	*c = ch
	return nil
}

// Control identifies a non-letter key.
type Control string

// Control keys
const (
	Enter     Control = "ENTER"
	Backspace Control = "BACKSPACE"
)

// Key is either a CharKey or a ControlKey. The set of variants is closed.
type Key interface {
	isKey()
}

// CharKey is a letter key with its current highlight.
type CharKey struct {
	Char Char `json:"char"`
	Mode Mode `json:"mode"`
}

// ControlKey is ENTER or BACKSPACE.
type ControlKey struct {
	Ctrl Control `json:"ctrl"`
}

func (CharKey) isKey()    {}
func (ControlKey) isKey() {}

// NewChar builds a CharKey.
func NewChar(c Char, mode Mode) CharKey {
	return CharKey{Char: c, Mode: mode}
}

// WithMode returns a copy of k carrying mode.
func (k CharKey) WithMode(mode Mode) CharKey {
	return CharKey{Char: k.Char, Mode: mode}
}

// EnterKey and BackspaceKey are the two control keys.
var (
	EnterKey     Key = ControlKey{Ctrl: Enter}
	BackspaceKey Key = ControlKey{Ctrl: Backspace}
)

// IsEnter reports whether k is the ENTER control key.
func IsEnter(k Key) bool {
	ck, ok := k.(ControlKey)
	return ok && ck.Ctrl == Enter
}

// Equal compares variant, char/ctrl and mode.
func Equal(k1, k2 Key) bool {
	switch a := k1.(type) {
	case CharKey:
		b, ok := k2.(CharKey)
		return ok && a.Char == b.Char && a.Mode == b.Mode
	case ControlKey:
		b, ok := k2.(ControlKey)
		return ok && a.Ctrl == b.Ctrl
	default:
		return false
	}
}

// SameKey compares physical identity and ignores mode.
func SameKey(k1, k2 Key) bool {
	switch a := k1.(type) {
	case CharKey:
		b, ok := k2.(CharKey)
		return ok && a.Char == b.Char
	case ControlKey:
		b, ok := k2.(ControlKey)
		return ok && a.Ctrl == b.Ctrl
	default:
		return false
	}
}

// ForChar applies f to char keys and passes control keys through.
func ForChar(f func(CharKey) CharKey, k Key) Key {
	switch ck := k.(type) {
	case CharKey:
		return f(ck)
	case ControlKey:
		return ck
	default:
		return k
	}
}

// Open resets a char key's highlight to OPEN.
func Open(k Key) Key {
	return ForChar(func(ck CharKey) CharKey { return ck.WithMode(ModeOpen) }, k)
}

// Layout is the on-screen keyboard. "+" is ENTER and "-" is BACKSPACE.
var Layout = [][]string{
	{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"},
	{"a", "s", "d", "f", "g", "h", "j", "k", "l"},
	{"+", "z", "x", "c", "v", "b", "n", "m", "-"},
}

// FromCap turns a layout cap into a key with OPEN mode.
func FromCap(cap string) (Key, bool) {
	switch cap {
	case "+":
		return EnterKey, true
	case "-":
		return BackspaceKey, true
	}
	if len(cap) != 1 {
		return nil, false
	}
	c := Char(cap[0])
	if !c.IsLetter() {
		return nil, false
	}
	return NewChar(c, ModeOpen), true
}

// Cap is the inverse of FromCap.
func Cap(k Key) string {
	switch ck := k.(type) {
	case CharKey:
		return ck.Char.String()
	case ControlKey:
		if ck.Ctrl == Backspace {
			return "-"
		}
		return "+"
	default:
		return ""
	}
}

// FromKeyCode maps a keyboard event name to a key. The boolean is false for
// names that should be ignored.
func FromKeyCode(name string) (Key, bool) {
	lower := strings.ToLower(name)
	switch lower {
	case "enter":
		return EnterKey, true
	case "backspace":
		return BackspaceKey, true
	}
	if len(lower) != 1 || !Char(lower[0]).IsLetter() {
		return nil, false
	}
	return NewChar(Char(lower[0]), ModeOpen), true
}
