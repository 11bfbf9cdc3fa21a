// Package game composes several boards that share one keystroke stream and
// one keyboard, and projects finished sessions into results.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"multidle/internal/board"
	"multidle/internal/key"
	"multidle/internal/letters"
)

// Mode selects how many boards are played at once.
type Mode string

// Board-count modes
const (
	ModeTwo   Mode = "two"
	ModeThree Mode = "three"
	ModeFour  Mode = "four"
)

// Modes lists every mode, largest first.
var Modes = []Mode{ModeFour, ModeThree, ModeTwo}

// ErrUnknownMode is returned when a mode name is not two, three or four.
var ErrUnknownMode = errors.New("unknown mode")

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !lo.Contains(Modes, m) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// BoardCount is the number of boards in mode m.
func (m Mode) BoardCount() int {
	switch m {
	case ModeTwo:
		return 2
	case ModeThree:
		return 3
	case ModeFour:
		return 4
	default:
		return 0
	}
}

// Title is the short display name of the mode, e.g. "4dle".
func (m Mode) Title() string {
	return fmt.Sprintf("%ddle", m.BoardCount())
}

// BoardState pairs a board with the letter highlights derived from it.
type BoardState struct {
	LetterState letters.State `json:"letterState"`
	Board       board.Board   `json:"board"`
}

// State is one mode's game for one puzzle day.
type State struct {
	PuzzleNumber int           `json:"puzzleNumber"`
	LetterState  letters.State `json:"letterState"`
	Boards       []BoardState  `json:"boards"`
	IsDone       bool          `json:"isDone"`
	StartTime    time.Time     `json:"startTime"`
	FinishTime   time.Time     `json:"finishTime"`
}

// NewGame starts a game with one board per word.
func NewGame(puzzleNumber int, words []string, now time.Time) State {
	return State{
		PuzzleNumber: puzzleNumber,
		LetterState:  letters.Empty(),
		Boards: lo.Map(words, func(w string, _ int) BoardState {
			return BoardState{LetterState: letters.Empty(), Board: board.New(w)}
		}),
		StartTime: now,
	}
}

// Validate checks every board of a decoded state.
func (s State) Validate() error {
	if len(s.Boards) == 0 {
		return errors.New("state has no boards")
	}
	for i, b := range s.Boards {
		if err := b.Board.Validate(); err != nil {
			return fmt.Errorf("board %d: %w", i, err)
		}
	}
	return nil
}

func onBoards(s State, f func(board.Board) board.Board) State {
	s.Boards = lo.Map(s.Boards, func(bs BoardState, _ int) BoardState {
		bs.Board = f(bs.Board)
		return bs
	})
	return s
}

// HandleKeyPress broadcasts k to every board. On ENTER the state is
// re-evaluated.
func HandleKeyPress(k key.Key, s State, dict board.Dictionary, now time.Time) State {
	k = key.Open(k)
	s = onBoards(s, func(b board.Board) board.Board { return board.ApplyKey(k, b, dict) })
	if key.IsEnter(k) {
		return Evaluate(s, now)
	}
	return s
}

// HandleClearInvalid wipes rejected rows on every board.
func HandleClearInvalid(s State) State {
	return onBoards(s, board.ClearInvalid)
}

// AggregateLetters merges the boards' letter states into the shared
// keyboard. Solved boards contribute nothing.
func AggregateLetters(boards []BoardState) letters.State {
	return letters.Merge(lo.Map(boards, func(bs BoardState, _ int) letters.State {
		if bs.Board.IsSolved {
			return letters.Empty()
		}
		return bs.LetterState
	})...)
}

// Evaluate recomputes per-board letters, completion, the shared keyboard
// and, on the first completion, the finish time.
func Evaluate(s State, now time.Time) State {
	s.Boards = lo.Map(s.Boards, func(bs BoardState, _ int) BoardState {
		bs.LetterState = letters.ForBoard(bs.Board)
		return bs
	})
	s.IsDone = lo.EveryBy(s.Boards, func(bs BoardState) bool { return bs.Board.IsSolved })
	s.LetterState = AggregateLetters(s.Boards)
	if s.IsDone && s.FinishTime.IsZero() {
		s.FinishTime = now
	}
	return s
}

// HasInvalidEntries reports whether any board has a rejected row.
func HasInvalidEntries(s State) bool {
	return lo.ContainsBy(s.Boards, func(bs BoardState) bool { return board.HasInvalidEntry(bs.Board) })
}

// SolvedCount is the number of solved boards.
func SolvedCount(s State) int {
	return lo.CountBy(s.Boards, func(bs BoardState) bool { return bs.Board.IsSolved })
}

// Duration is the time spent so far, or in total once finished.
func Duration(s State, now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	end := now
	if !s.FinishTime.IsZero() {
		end = s.FinishTime
	}
	if end.Before(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}
