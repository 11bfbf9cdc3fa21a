// Package streak folds game results into a cross-day record, both overall
// and per board-count mode.
package streak

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/samber/lo"

	"multidle/internal/game"
)

// Stats are the day counters shared by the overall record and each mode.
type Stats struct {
	TotalDays     int `json:"totalDays"`
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
	LongestGap    int `json:"longestGap"`
	LastPuzzle    int `json:"lastPuzzle"`
}

// GameStats extends Stats with trial records for one mode. Trials holds the
// per-board counts of the best game so far.
type GameStats struct {
	Stats
	Minimum int   `json:"minimum"`
	Maximum int   `json:"maximum"`
	Trials  []int `json:"trials"`
}

// Streak is the full persisted record.
type Streak struct {
	Stats
	Record map[game.Mode]GameStats `json:"record"`
}

// TrialCount sums the best game's trials.
func TrialCount(gs GameStats) int {
	return lo.Sum(gs.Trials)
}

// EmptyGameStats returns a blank record with one zero per board.
func EmptyGameStats(m game.Mode) GameStats {
	return GameStats{Trials: make([]int, m.BoardCount())}
}

// Empty returns a streak with nothing played.
func Empty() Streak {
	record := make(map[game.Mode]GameStats, len(game.Modes))
	for _, m := range game.Modes {
		record[m] = EmptyGameStats(m)
	}
	return Streak{Record: record}
}

// Validate checks a decoded streak.
func (s Streak) Validate() error {
	for _, m := range game.Modes {
		gs, ok := s.Record[m]
		if !ok {
			return fmt.Errorf("missing record for mode %s", m)
		}
		if gs.LastPuzzle < 0 || gs.Minimum < 0 || gs.Maximum < 0 {
			return fmt.Errorf("mode %s: negative counters", m)
		}
	}
	if s.LastPuzzle < 0 || s.TotalDays < 0 {
		return errors.New("negative counters")
	}
	return nil
}

func updateStats(puzzle int, st Stats) Stats {
	if puzzle == st.LastPuzzle {
		return st
	}
	gap := 0
	if st.LastPuzzle != 0 {
		gap = puzzle - st.LastPuzzle - 1
	}
	current := 1
	if st.LastPuzzle == puzzle-1 {
		current = st.CurrentStreak + 1
	}
	return Stats{
		TotalDays:     st.TotalDays + 1,
		CurrentStreak: current,
		LongestStreak: max(st.LongestStreak, current),
		LongestGap:    max(st.LongestGap, gap),
		LastPuzzle:    puzzle,
	}
}

func updateRecord(r game.Result, gs GameStats) GameStats {
	if r.PuzzleNumber == gs.LastPuzzle {
		return gs
	}
	minimum := r.MinTrials
	if gs.Minimum > 0 {
		minimum = min(gs.Minimum, r.MinTrials)
	}
	maximum := r.MaxTrials
	if gs.Maximum > 0 {
		maximum = max(gs.Maximum, r.MaxTrials)
	}
	trials := gs.Trials
	if total := TrialCount(gs); total <= 0 || total > r.TrialCount {
		trials = r.Trials
	}
	return GameStats{
		Stats:   updateStats(r.PuzzleNumber, gs.Stats),
		Minimum: minimum,
		Maximum: maximum,
		Trials:  slices.Clone(trials),
	}
}

// IncStreak records r. Repeating a (puzzle, mode) pair is a no-op. The
// overall counters and the mode's record advance independently, so a second
// mode finished on the same day only touches its own record.
func IncStreak(r game.Result, s Streak) Streak {
	record := maps.Clone(s.Record)
	if record == nil {
		record = make(map[game.Mode]GameStats, 1)
	}
	gs, ok := record[r.Mode]
	if !ok {
		gs = EmptyGameStats(r.Mode)
	}
	record[r.Mode] = updateRecord(r, gs)
	return Streak{Stats: updateStats(r.PuzzleNumber, s.Stats), Record: record}
}

// ModesRemaining lists, largest first, the modes without a record for day.
func ModesRemaining(s Streak, day int) []game.Mode {
	return lo.Filter(game.Modes, func(m game.Mode, _ int) bool {
		return s.Record[m].LastPuzzle != day
	})
}

func positiveOr(a, b int, pick func(int, int) int) int {
	switch {
	case a > 0 && b > 0:
		return pick(a, b)
	case a > 0:
		return a
	default:
		return b
	}
}

// overlay lays top over base. The lower non-zero trial total wins, and
// zero minimum or maximum values never win.
func overlay(top, base GameStats) GameStats {
	topTotal, baseTotal := TrialCount(top), TrialCount(base)
	trials := top.Trials
	if topTotal <= 0 || (topTotal > baseTotal && baseTotal > 0) {
		trials = base.Trials
	}
	return GameStats{
		Stats:   top.Stats,
		Minimum: positiveOr(top.Minimum, base.Minimum, func(a, b int) int { return min(a, b) }),
		Maximum: positiveOr(top.Maximum, base.Maximum, func(a, b int) int { return max(a, b) }),
		Trials:  slices.Clone(trials),
	}
}

// OverallStats combines the mode records: three over four, then two over
// the result.
func OverallStats(s Streak) GameStats {
	acc := s.Record[game.ModeFour]
	acc = overlay(s.Record[game.ModeThree], acc)
	return overlay(s.Record[game.ModeTwo], acc)
}
