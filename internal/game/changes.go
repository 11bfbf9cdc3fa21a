package game

import (
	"fmt"

	"multidle/internal/board"
	"multidle/internal/key"
)

// ChangeKind names the granularity of a Change.
type ChangeKind string

// Change kinds
const (
	ChangeBoard  ChangeKind = "board"
	ChangeEntry  ChangeKind = "entry"
	ChangeSlot   ChangeKind = "slot"
	ChangeKeycap ChangeKind = "keycap"
	ChangeReset  ChangeKind = "reset"
)

// Change is one addressable difference between two snapshots. The indexes
// are always encoded since 0 is a real position; the payload fields are set
// only for the Kind that uses them. A reset tells the client to drop
// everything and rebuild from the changes that follow it.
type Change struct {
	Kind       ChangeKind   `json:"kind"`
	BoardIndex int          `json:"boardIndex"`
	EntryIndex int          `json:"entryIndex"`
	SlotIndex  int          `json:"slotIndex"`
	BoardCount int          `json:"boardCount,omitempty"`
	Char       *key.CharKey `json:"char,omitempty"`
	Entry      *board.Entry `json:"entry,omitempty"`
	Board      *BoardState  `json:"board,omitempty"`
	Keycap     key.Char     `json:"keycap,omitempty"`
	Mode       key.Mode     `json:"mode,omitempty"`
}

// Address is the "board:entry:slot" style topic for the change.
func (c Change) Address() string {
	switch c.Kind {
	case ChangeSlot:
		return fmt.Sprintf("slot:%d:%d:%d", c.BoardIndex, c.EntryIndex, c.SlotIndex)
	case ChangeEntry:
		return fmt.Sprintf("entry:%d:%d", c.BoardIndex, c.EntryIndex)
	case ChangeBoard:
		return fmt.Sprintf("board:%d", c.BoardIndex)
	case ChangeKeycap:
		return fmt.Sprintf("keycap:%s", c.Keycap)
	case ChangeReset:
		return fmt.Sprintf("reset:%d", c.BoardCount)
	default:
		return string(c.Kind)
	}
}

func slotAt(e board.Entry, i int) *key.CharKey {
	if i >= len(e.Chars) {
		return nil
	}
	ck := e.Chars[i]
	return &ck
}

func sameSlot(a, b *key.CharKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Diff lists what changed from old to cur. Boards or rows that exist only
// in cur are reported in full.
func Diff(old, cur State) []Change {
	var changes []Change
	for bi, nb := range cur.Boards {
		if bi >= len(old.Boards) {
			changes = append(changes, boardChanges(bi, nb)...)
			continue
		}
		ob := old.Boards[bi]
		if ob.Board.IsSolved != nb.Board.IsSolved || ob.Board.CurrentIndex != nb.Board.CurrentIndex {
			changes = append(changes, Change{Kind: ChangeBoard, BoardIndex: bi, Board: &nb})
		}
		for ei, ne := range nb.Board.Entries {
			if ei >= len(ob.Board.Entries) {
				changes = append(changes, entryChanges(bi, ei, ne)...)
				continue
			}
			oe := ob.Board.Entries[ei]
			if oe.IsCommitted != ne.IsCommitted || oe.IsInvalid != ne.IsInvalid || len(oe.Chars) != len(ne.Chars) {
				changes = append(changes, Change{Kind: ChangeEntry, BoardIndex: bi, EntryIndex: ei, Entry: &ne})
			}
			for si := range board.WordLength {
				if !sameSlot(slotAt(oe, si), slotAt(ne, si)) {
					changes = append(changes, Change{Kind: ChangeSlot, BoardIndex: bi, EntryIndex: ei, SlotIndex: si, Char: slotAt(ne, si)})
				}
			}
		}
	}
	for _, c := range key.AllChars {
		if old.LetterState.Get(c) != cur.LetterState.Get(c) {
			changes = append(changes, Change{Kind: ChangeKeycap, Keycap: c, Mode: cur.LetterState.Get(c)})
		}
	}
	return changes
}

// AllChanges describes s in full, for a client that has nothing yet.
func AllChanges(s State) []Change {
	var changes []Change
	for bi, bs := range s.Boards {
		changes = append(changes, boardChanges(bi, bs)...)
	}
	for _, c := range key.AllChars {
		changes = append(changes, Change{Kind: ChangeKeycap, Keycap: c, Mode: s.LetterState.Get(c)})
	}
	return changes
}

// Replace swaps whatever the client shows for s: a reset sized to s's
// boards, then s in full. Use it when old and new are different games.
func Replace(s State) []Change {
	return append([]Change{{Kind: ChangeReset, BoardCount: len(s.Boards)}}, AllChanges(s)...)
}

func boardChanges(bi int, bs BoardState) []Change {
	changes := []Change{{Kind: ChangeBoard, BoardIndex: bi, Board: &bs}}
	for ei, e := range bs.Board.Entries {
		changes = append(changes, entryChanges(bi, ei, e)...)
	}
	return changes
}

func entryChanges(bi, ei int, e board.Entry) []Change {
	changes := []Change{{Kind: ChangeEntry, BoardIndex: bi, EntryIndex: ei, Entry: &e}}
	for si := range board.WordLength {
		changes = append(changes, Change{Kind: ChangeSlot, BoardIndex: bi, EntryIndex: ei, SlotIndex: si, Char: slotAt(e, si)})
	}
	return changes
}
