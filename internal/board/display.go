package board

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"multidle/internal/key"
)

var modeEmoji = map[key.Mode]string{
	key.ModeOpen:     "🔳",
	key.ModeHit:      "🟨",
	key.ModeMiss:     "⬛",
	key.ModeBullseye: "🟩",
	key.ModeError:    "🟥",
}

// Display renders the row as colored squares.
func (e Entry) Display() string {
	return strings.Join(lo.Map(e.Chars, func(c key.CharKey, _ int) string {
		return modeEmoji[c.Mode]
	}), "")
}

// DisplayBoard renders every row, numbered from 1.
func DisplayBoard(b Board) string {
	return strings.Join(lo.Map(b.Entries, func(e Entry, i int) string {
		return fmt.Sprintf("%2d %s", i+1, e.Display())
	}), "\n")
}

// Result summarizes one board for the end-of-game screen.
type Result struct {
	IsSolved        bool   `json:"isSolved"`
	Trials          int    `json:"trials"`
	Display         string `json:"display"`
	HasInvalidEntry bool   `json:"hasInvalidEntry"`
}

// Summarize projects b into a Result.
func Summarize(b Board) Result {
	return Result{
		IsSolved:        b.IsSolved,
		Trials:          Trials(b),
		Display:         DisplayBoard(b),
		HasInvalidEntry: HasInvalidEntry(b),
	}
}
