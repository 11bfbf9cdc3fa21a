// Package letters derives keyboard highlighting from guess history.
package letters

import (
	"encoding/json"
	"fmt"

	"multidle/internal/board"
	"multidle/internal/key"
)

// State maps each of the 26 letters to its highlight.
type State [26]key.Mode

// Empty returns a state with every letter OPEN.
func Empty() State {
	var s State
	for i := range s {
		s[i] = key.ModeOpen
	}
	return s
}

// Get returns c's mode. Non-letters read as OPEN.
func (s State) Get(c key.Char) key.Mode {
	idx := c.Index()
	if idx < 0 || s[idx] == "" {
		return key.ModeOpen
	}
	return s[idx]
}

// Key returns the keyboard key for c carrying its current highlight.
func (s State) Key(c key.Char) key.CharKey {
	return key.NewChar(c, s.Get(c))
}

// Apply upgrades the recorded mode of ck's letter via key.MaxMode.
func (s State) Apply(ck key.CharKey) State {
	idx := ck.Char.Index()
	if idx < 0 {
		return s
	}
	s[idx] = key.MaxMode(s.Get(ck.Char), ck.Mode)
	return s
}

// Merge combines states letter by letter with key.MaxMode.
func Merge(states ...State) State {
	out := Empty()
	for _, s := range states {
		for _, c := range key.AllChars {
			out = out.Apply(s.Key(c))
		}
	}
	return out
}

// ForBoard folds every tile of every row on b into a fresh state.
func ForBoard(b board.Board) State {
	s := Empty()
	for _, e := range b.Entries {
		for _, ck := range e.Chars {
			s = s.Apply(ck)
		}
	}
	return s
}

func (s State) MarshalJSON() ([]byte, error) {
	m := make(map[string]key.Mode, len(s))
	for _, c := range key.AllChars {
		m[c.String()] = s.Get(c)
	}
	return json.Marshal(m)
}

func (s *State) UnmarshalJSON(data []byte) error {
	var m map[string]key.Mode
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := Empty()
	for k, mode := range m {
		if len(k) != 1 || !key.Char(k[0]).IsLetter() {
			return fmt.Errorf("invalid letter %q", k)
		}
		if !mode.Valid() {
			return fmt.Errorf("invalid mode %q for letter %q", mode, k)
		}
		out[key.Char(k[0]).Index()] = mode
	}
	*s = out
	return nil
}
