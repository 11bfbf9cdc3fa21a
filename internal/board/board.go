package board

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"multidle/internal/key"
)

// Board is one puzzle: a solution and the rows guessed against it.
type Board struct {
	Solution     string  `json:"solution"`
	CurrentIndex int     `json:"currentIndex"`
	Entries      []Entry `json:"entries"`
	IsSolved     bool    `json:"isSolved"`
}

// New starts a board with a single empty row.
func New(solution string) Board {
	return Board{
		Solution: strings.ToLower(solution),
		Entries:  []Entry{EmptyEntry()},
	}
}

// Current returns the row being edited.
func (b Board) Current() Entry {
	return b.Entries[b.CurrentIndex]
}

// Validate checks the structural invariants of a board, typically one
// decoded from storage. Rows before CurrentIndex are committed; the current
// row is the first editable one, or the solving row once solved.
func (b Board) Validate() error {
	if len(b.Solution) != WordLength {
		return fmt.Errorf("solution %q is not %d letters", b.Solution, WordLength)
	}
	if len(b.Entries) == 0 {
		return errors.New("board has no entries")
	}
	if b.CurrentIndex < 0 || b.CurrentIndex >= len(b.Entries) {
		return fmt.Errorf("current index %d out of range [0,%d)", b.CurrentIndex, len(b.Entries))
	}
	for i, e := range b.Entries {
		if len(e.Chars) > WordLength {
			return fmt.Errorf("entry %d has %d chars", i, len(e.Chars))
		}
		for _, ck := range e.Chars {
			if !ck.Char.IsLetter() || !ck.Mode.Valid() {
				return fmt.Errorf("entry %d has bad tile %q/%q", i, ck.Char, ck.Mode)
			}
		}
		if e.IsCommitted && (e.IsInvalid || len(e.Chars) != WordLength) {
			return fmt.Errorf("entry %d is committed but not a complete word", i)
		}
		if i < b.CurrentIndex && !e.IsCommitted {
			return fmt.Errorf("entry %d before current index %d is not committed", i, b.CurrentIndex)
		}
	}
	cur := b.Current()
	if b.IsSolved {
		if b.CurrentIndex != len(b.Entries)-1 || !cur.IsCommitted || cur.Word() != b.Solution {
			return errors.New("solved board does not end on its solution")
		}
		return nil
	}
	if cur.IsCommitted {
		return fmt.Errorf("current entry %d is already committed", b.CurrentIndex)
	}
	return nil
}

func onCurrent(b Board, f func(Entry) Entry) Board {
	entries := slices.Clone(b.Entries)
	entries[b.CurrentIndex] = f(entries[b.CurrentIndex])
	b.Entries = entries
	return b
}

// ApplyKey types k into the current row of b. The key's highlight is reset
// to OPEN first. ENTER also checks the row. Solved boards ignore input.
func ApplyKey(k key.Key, b Board, dict Dictionary) Board {
	if b.IsSolved {
		return b
	}
	k = key.Open(k)
	b = onCurrent(b, func(e Entry) Entry { return Apply(k, e) })
	if key.IsEnter(k) {
		return CheckSolution(b, dict)
	}
	return b
}

// CheckSolution scores the current row, records whether it solved the board,
// then fixes up the rows and moves to the next editable one.
func CheckSolution(b Board, dict Dictionary) Board {
	b = onCurrent(b, func(e Entry) Entry { return CheckEntry(b.Solution, dict, e) })
	cur := b.Current()
	b.IsSolved = cur.IsCommitted && cur.Word() == b.Solution
	return nextEntry(b)
}

func fixEntries(b Board) Board {
	if b.IsSolved {
		b.Entries = lo.Filter(b.Entries, func(e Entry, _ int) bool { return e.IsComplete() })
		return b
	}
	if !lo.ContainsBy(b.Entries, func(e Entry) bool { return !e.IsComplete() }) {
		b.Entries = append(slices.Clone(b.Entries), EmptyEntry())
	}
	return b
}

func nextEntry(b Board) Board {
	b = fixEntries(b)
	_, idx, ok := lo.FindIndexOf(b.Entries, func(e Entry) bool { return !e.IsComplete() })
	if !ok {
		idx = len(b.Entries) - 1
	}
	b.CurrentIndex = idx
	return b
}

// ClearInvalid replaces every rejected row with an empty one.
func ClearInvalid(b Board) Board {
	if !HasInvalidEntry(b) {
		return b
	}
	b.Entries = lo.Map(b.Entries, func(e Entry, _ int) Entry {
		if e.IsInvalid {
			return EmptyEntry()
		}
		return e
	})
	return b
}

// HasInvalidEntry reports whether any row is currently rejected.
func HasInvalidEntry(b Board) bool {
	return lo.ContainsBy(b.Entries, func(e Entry) bool { return e.IsInvalid })
}

// Indexed pairs a row with its absolute position on the board.
type Indexed struct {
	Entry Entry `json:"entry"`
	Index int   `json:"index"`
}

// LastEntered returns up to count rows ending at the current row.
func LastEntered(count int, b Board) []Indexed {
	if count <= 0 {
		return nil
	}
	start := max(b.CurrentIndex-count+1, 0)
	end := min(start+count, len(b.Entries))
	return lo.Map(b.Entries[start:end], func(e Entry, i int) Indexed {
		return Indexed{Entry: e, Index: start + i}
	})
}

// Trials counts committed guesses.
func Trials(b Board) int {
	return lo.CountBy(b.Entries, func(e Entry) bool { return e.IsCommitted })
}

// SignificantRows returns the first row index with any HIT, any BULLSEYE,
// at least two HIT or BULLSEYE tiles, and at least two BULLSEYE tiles.
// Missing milestones are -1.
func SignificantRows(b Board) [4]int {
	count := func(e Entry, modes ...key.Mode) int {
		return lo.CountBy(e.Chars, func(c key.CharKey) bool { return slices.Contains(modes, c.Mode) })
	}
	first := func(pred func(Entry) bool) int {
		_, idx, ok := lo.FindIndexOf(b.Entries, pred)
		if !ok {
			return -1
		}
		return idx
	}
	return [4]int{
		first(func(e Entry) bool { return count(e, key.ModeHit) > 0 }),
		first(func(e Entry) bool { return count(e, key.ModeBullseye) > 0 }),
		first(func(e Entry) bool { return count(e, key.ModeHit, key.ModeBullseye) >= 2 }),
		first(func(e Entry) bool { return count(e, key.ModeBullseye) >= 2 }),
	}
}
