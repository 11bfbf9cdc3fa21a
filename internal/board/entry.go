// Package board holds the single-board evaluation engine: typing into a guess
// row, scoring a committed guess against the solution, and advancing rows.
//
// Every function here takes values and returns new values. Nothing mutates
// its input, so a caller can keep the previous snapshot around for diffing.
package board

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"multidle/internal/key"
)

// WordLength is the number of letters in every solution and guess.
const WordLength = 5

// Dictionary decides whether a completed guess is a real word.
type Dictionary interface {
	Contains(word string) bool
}

// Entry is one guess row.
type Entry struct {
	Chars       []key.CharKey `json:"chars"`
	IsCommitted bool          `json:"isCommitted"`
	IsInvalid   bool          `json:"isInvalid"`
}

// EmptyEntry returns a fresh editable row.
func EmptyEntry() Entry {
	return Entry{Chars: []key.CharKey{}}
}

// IsComplete reports whether the row holds a full, non-rejected word.
func (e Entry) IsComplete() bool {
	return len(e.Chars) == WordLength && !e.IsInvalid
}

// IsEmpty reports whether nothing has been typed.
func (e Entry) IsEmpty() bool {
	return len(e.Chars) == 0
}

// Word spells out the row's letters.
func (e Entry) Word() string {
	var sb strings.Builder
	for _, c := range e.Chars {
		sb.WriteByte(byte(c.Char))
	}
	return sb.String()
}

// Equal compares commit state and every tile.
func (e Entry) Equal(o Entry) bool {
	return e.IsCommitted == o.IsCommitted &&
		e.IsInvalid == o.IsInvalid &&
		slices.Equal(e.Chars, o.Chars)
}

// FromWord types word into an empty row without committing it.
func FromWord(word string) Entry {
	e := EmptyEntry()
	for _, r := range strings.ToLower(word) {
		e = Apply(key.NewChar(key.Char(r), key.ModeOpen), e)
	}
	return e
}

// FromSolution builds the fully solved row for solution.
func FromSolution(solution string) Entry {
	chars := lo.Map([]byte(solution), func(c byte, _ int) key.CharKey {
		return key.NewChar(key.Char(c), key.ModeBullseye)
	})
	return Entry{Chars: chars, IsCommitted: true}
}

// Apply types k into e. A rejected row is wiped before the key lands.
// ENTER is ignored here; scoring happens in CheckEntry.
func Apply(k key.Key, e Entry) Entry {
	if e.IsCommitted {
		return e
	}
	if e.IsInvalid {
		e = EmptyEntry()
	}
	switch ck := k.(type) {
	case key.CharKey:
		if len(e.Chars) >= WordLength || !ck.Char.IsLetter() {
			return e
		}
		return Entry{Chars: append(slices.Clone(e.Chars), ck.WithMode(key.ModeOpen))}
	case key.ControlKey:
		if ck.Ctrl != key.Backspace || e.IsEmpty() {
			return e
		}
		return Entry{Chars: slices.Clone(e.Chars[:len(e.Chars)-1])}
	default:
		return e
	}
}

// CheckEntry scores a complete, uncommitted row against solution. A word
// missing from dict is flagged invalid and painted ERROR. A nil dict accepts
// every word.
func CheckEntry(solution string, dict Dictionary, e Entry) Entry {
	if !e.IsComplete() || e.IsCommitted {
		return e
	}
	if dict != nil && !dict.Contains(e.Word()) {
		return Entry{
			Chars: lo.Map(e.Chars, func(c key.CharKey, _ int) key.CharKey {
				return c.WithMode(key.ModeError)
			}),
			IsInvalid: true,
		}
	}

	scored := lo.Map(e.Chars, func(c key.CharKey, i int) key.CharKey {
		mode := key.ModeMiss
		if strings.IndexByte(solution, byte(c.Char)) >= 0 {
			mode = key.ModeHit
		}
		if i < len(solution) && solution[i] == byte(c.Char) {
			mode = key.ModeBullseye
		}
		return c.WithMode(mode)
	})
	return Entry{Chars: normalize(solution, scored), IsCommitted: true}
}

// normalize caps HIT+BULLSEYE per letter at the letter's count in solution.
// Bullseyes always stand; surplus hits, left to right, become misses.
// A letter guessed only once is never touched.
func normalize(solution string, chars []key.CharKey) []key.CharKey {
	out := slices.Clone(chars)
	for _, c := range lo.Uniq(lo.Map(chars, func(ck key.CharKey, _ int) key.Char { return ck.Char })) {
		positions := lo.FilterMap(out, func(ck key.CharKey, i int) (int, bool) {
			return i, ck.Char == c
		})
		if len(positions) == 1 {
			continue
		}
		bulls := lo.CountBy(positions, func(i int) bool { return out[i].Mode == key.ModeBullseye })
		budget := strings.Count(solution, c.String()) - bulls
		for _, i := range positions {
			if out[i].Mode != key.ModeHit {
				continue
			}
			if budget > 0 {
				budget--
				continue
			}
			out[i] = out[i].WithMode(key.ModeMiss)
		}
	}
	return out
}

// HasChar reports whether e holds needle in any of modes.
func HasChar(needle key.Char, modes []key.Mode, e Entry) bool {
	return lo.ContainsBy(e.Chars, func(c key.CharKey) bool {
		return c.Char == needle && slices.Contains(modes, c.Mode)
	})
}
