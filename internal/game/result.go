package game

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"multidle/internal/board"
)

// MarathonTrials is the max trial count above which a win is a "props" win
// rather than a "kudos" win.
const MarathonTrials = 12

// Flavor text pools for the result message.
var (
	Encouragement = []string{
		"Tough Luck!",
		"Try again?",
		"Once more?",
		"Tomorrow never dies, but today is still alive!",
		"Already?",
		"Horror... Horror...",
	}
	Props = []string{
		"You did it!",
		"That was... close!",
		"Phew!",
		"You like marathons, don't you?",
		"Somewhere, someone tried a bit more than you, for sure, maybe?",
		"I'm telling you, these words are funny!",
	}
	Kudos = []string{
		"You are the one. Blue pill or Red pill?",
		"Are you a secret genius?",
		"Wow!",
		"Lucky, Lucky!",
		"Over the top!",
		"Impossible!",
	}
)

const emptyRow = "🖤🖤🖤🖤🖤"

// Result is a read-only projection of a State.
type Result struct {
	PuzzleNumber      int            `json:"puzzleNumber"`
	Mode              Mode           `json:"mode"`
	StartTime         time.Time      `json:"startTime"`
	FinishTime        time.Time      `json:"finishTime"`
	Time              string         `json:"time"`
	BoardResults      []board.Result `json:"boardResults"`
	Trials            []int          `json:"trials"`
	MaxTrials         int            `json:"maxTrials"`
	MinTrials         int            `json:"minTrials"`
	TrialCount        int            `json:"trialCount"`
	Display           string         `json:"display"`
	ShareScore        string         `json:"shareScore"`
	IsSolved          bool           `json:"isSolved"`
	HasInvalidEntries bool           `json:"hasInvalidEntries"`
	Message           string         `json:"message"`
	ShareTitle        string         `json:"shareTitle"`
}

// MessagePool picks the flavor pool for a finished or abandoned game.
func MessagePool(isSolved bool, maxTrials int) []string {
	switch {
	case !isSolved:
		return Encouragement
	case maxTrials > MarathonTrials:
		return Props
	default:
		return Kudos
	}
}

// NewResult summarizes s.
func NewResult(s State, mode Mode, now time.Time) Result {
	boardResults := lo.Map(s.Boards, func(bs BoardState, _ int) board.Result {
		return board.Summarize(bs.Board)
	})
	trials := lo.Map(boardResults, func(r board.Result, _ int) int { return r.Trials })
	isSolved := len(boardResults) > 0 && lo.EveryBy(boardResults, func(r board.Result) bool { return r.IsSolved })
	maxTrials := lo.Max(trials)
	minTrials := lo.Min(trials)

	return Result{
		PuzzleNumber:      s.PuzzleNumber,
		Mode:              mode,
		StartTime:         s.StartTime,
		FinishTime:        s.FinishTime,
		Time:              FormatDuration(Duration(s, now)),
		BoardResults:      boardResults,
		Trials:            trials,
		MaxTrials:         maxTrials,
		MinTrials:         minTrials,
		TrialCount:        lo.Sum(trials),
		Display:           fmt.Sprintf(" %s:\n%s", mode.Title(), DisplayHorizontal(s, 6)),
		ShareScore:        fmt.Sprintf("%s:\n %s\n%s", mode.Title(), DisplayVertical(s, 2), bestLine(trials)),
		IsSolved:          isSolved,
		HasInvalidEntries: HasInvalidEntries(s),
		Message:           lo.Sample(MessagePool(isSolved, maxTrials)),
		ShareTitle:        mode.Title(),
	}
}

// DayResults projects every mode of d.
func DayResults(d DayState, now time.Time) map[Mode]Result {
	out := make(map[Mode]Result, len(d.States))
	for m, s := range d.States {
		out[m] = NewResult(s, m, now)
	}
	return out
}

func bestLine(trials []int) string {
	if len(trials) == 0 {
		return ""
	}
	best := slices.Index(trials, lo.Min(trials))
	return fmt.Sprintf("best #%d (%d)", best, trials[best])
}

func boardLines(bs BoardState, numRows int) []string {
	lines := strings.Split(board.DisplayBoard(bs.Board), "\n")
	if len(lines) > numRows {
		lines = lines[len(lines)-numRows:]
	}
	return lines
}

// DisplayVertical stacks each board's last numRows rows under a "#i" header.
func DisplayVertical(s State, numRows int) string {
	return strings.Join(lo.Map(s.Boards, func(bs BoardState, i int) string {
		return fmt.Sprintf("#%d\n%s", i, strings.Join(boardLines(bs, numRows), "\n"))
	}), "\n")
}

// DisplayHorizontal lays boards side by side, padding short boards with
// empty rows so every column has numRows lines.
func DisplayHorizontal(s State, numRows int) string {
	lines := make([]string, numRows)
	for _, bs := range s.Boards {
		rows := boardLines(bs, numRows)
		for i := len(rows); i < numRows; i++ {
			rows = append(rows, fmt.Sprintf("%2d %s", i, emptyRow))
		}
		for i, r := range rows {
			lines[i] += r + " "
		}
	}
	return strings.Join(lines, "\n")
}

// FormatDuration renders d as "N minutes, M seconds" style text.
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds()) % 60
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours())
	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour%s, %d minute%s, %d second%s",
			hours, plural(hours),
			minutes, plural(minutes),
			seconds, plural(seconds))
	case minutes > 0:
		return fmt.Sprintf("%d minute%s, %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
