package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"multidle/internal/board"
	"multidle/internal/game"
	"multidle/internal/key"
	"multidle/internal/streak"
)

var modeColors = map[key.Mode]*color.Color{
	key.ModeBullseye: color.New(color.BgGreen, color.FgBlack, color.Bold),
	key.ModeHit:      color.New(color.BgYellow, color.FgBlack, color.Bold),
	key.ModeMiss:     color.New(color.BgHiBlack, color.FgWhite),
	key.ModeError:    color.New(color.BgRed, color.FgWhite, color.Bold),
	key.ModeOpen:     color.New(color.FgWhite, color.Bold),
}

func tile(ck key.CharKey) string {
	label := " " + strings.ToUpper(ck.Char.String()) + " "
	if c, ok := modeColors[ck.Mode]; ok {
		return c.Sprint(label)
	}
	return label
}

var blankTile = color.New(color.FgHiBlack).Sprint(" . ")

func entryRow(e board.Entry) string {
	var sb strings.Builder
	for i := 0; i < board.WordLength; i++ {
		if i < len(e.Chars) {
			sb.WriteString(tile(e.Chars[i]))
		} else {
			sb.WriteString(blankTile)
		}
	}
	return sb.String()
}

// renderState prints the boards side by side, then the keyboard.
func renderState(w io.Writer, s game.State) {
	rows := lo.Max(lo.Map(s.Boards, func(bs game.BoardState, _ int) int { return len(bs.Board.Entries) }))
	for r := 0; r < rows; r++ {
		cells := lo.Map(s.Boards, func(bs game.BoardState, _ int) string {
			if r < len(bs.Board.Entries) {
				return entryRow(bs.Board.Entries[r])
			}
			return entryRow(board.EmptyEntry())
		})
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
	fmt.Fprintln(w)
	renderKeyboard(w, s)
}

func renderKeyboard(w io.Writer, s game.State) {
	for i, row := range key.Layout {
		caps := lo.Map(row, func(cp string, _ int) string {
			switch cp {
			case "+":
				return " ENTER "
			case "-":
				return " DEL "
			}
			return tile(s.LetterState.Key(key.Char(cp[0])))
		})
		fmt.Fprintln(w, strings.Repeat(" ", i)+strings.Join(caps, ""))
	}
}

func printStats(w io.Writer, st streak.Streak) {
	fmt.Fprintf(w, "Days played:    %d\n", st.TotalDays)
	fmt.Fprintf(w, "Current streak: %d\n", st.CurrentStreak)
	fmt.Fprintf(w, "Longest streak: %d\n", st.LongestStreak)
	fmt.Fprintf(w, "Longest gap:    %d\n", st.LongestGap)
	overall := streak.OverallStats(st)
	fmt.Fprintf(w, "Best game:      %d, worst game: %d\n", overall.Minimum, overall.Maximum)
	for _, m := range game.Modes {
		gs := st.Record[m]
		fmt.Fprintf(w, "  %-5s %3d days, streak %d, best %v\n", m, gs.TotalDays, gs.CurrentStreak, gs.Trials)
	}
}
