package game

import (
	"fmt"
	"maps"
	"time"
)

// DayWords holds each mode's solutions for one day.
type DayWords map[Mode][]string

// Validate checks that every mode has the right number of five-letter words.
func (dw DayWords) Validate() error {
	for _, m := range Modes {
		words, ok := dw[m]
		if !ok {
			return fmt.Errorf("missing words for mode %s", m)
		}
		if len(words) != m.BoardCount() {
			return fmt.Errorf("mode %s has %d words, want %d", m, len(words), m.BoardCount())
		}
		for _, w := range words {
			if len(w) != 5 {
				return fmt.Errorf("mode %s: word %q is not 5 letters", m, w)
			}
		}
	}
	return nil
}

// DayState holds one independent game per mode for a puzzle day.
type DayState struct {
	PuzzleNumber int            `json:"puzzleNumber"`
	States       map[Mode]State `json:"states"`
}

// FromWords starts a fresh day.
func FromWords(dayNumber int, words DayWords, now time.Time) DayState {
	states := make(map[Mode]State, len(Modes))
	for _, m := range Modes {
		states[m] = NewGame(dayNumber, words[m], now)
	}
	return DayState{PuzzleNumber: dayNumber, States: states}
}

// State returns the game for mode m.
func (d DayState) State(m Mode) State {
	return d.States[m]
}

// With returns a copy of d whose mode m game is replaced by s.
func (d DayState) With(m Mode, s State) DayState {
	states := maps.Clone(d.States)
	if states == nil {
		states = make(map[Mode]State, 1)
	}
	states[m] = s
	return DayState{PuzzleNumber: d.PuzzleNumber, States: states}
}

// Validate checks that every mode is present, belongs to this day and has
// the right number of boards.
func (d DayState) Validate() error {
	for _, m := range Modes {
		s, ok := d.States[m]
		if !ok {
			return fmt.Errorf("missing state for mode %s", m)
		}
		if s.PuzzleNumber != d.PuzzleNumber {
			return fmt.Errorf("mode %s is for puzzle %d, day is %d", m, s.PuzzleNumber, d.PuzzleNumber)
		}
		if len(s.Boards) != m.BoardCount() {
			return fmt.Errorf("mode %s has %d boards", m, len(s.Boards))
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("mode %s: %w", m, err)
		}
	}
	return nil
}
