package game

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"multidle/internal/board"
	"multidle/internal/key"
	"multidle/internal/letters"
)

type wordSet map[string]struct{}

func (w wordSet) Contains(word string) bool {
	_, ok := w[word]
	return ok
}

var (
	testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testDict  = wordSet{
		"sweat": {}, "crane": {}, "pilot": {}, "mound": {},
		"wheat": {}, "sewer": {}, "treat": {}, "plumb": {},
	}
	testWords = DayWords{
		ModeTwo:   {"sweat", "crane"},
		ModeThree: {"sweat", "crane", "pilot"},
		ModeFour:  {"sweat", "crane", "pilot", "mound"},
	}
)

func press(s State, word string, now time.Time) State {
	for i := 0; i < len(word); i++ {
		s = HandleKeyPress(key.NewChar(key.Char(word[i]), key.ModeOpen), s, testDict, now)
	}
	return HandleKeyPress(key.EnterKey, s, testDict, now)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("five"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode(five) err = %v, want ErrUnknownMode", err)
	}
	if ModeFour.Title() != "4dle" || ModeTwo.BoardCount() != 2 {
		t.Error("mode helpers are wrong")
	}
}

func TestNewGame(t *testing.T) {
	s := NewGame(42, testWords[ModeFour], testStart)
	if s.PuzzleNumber != 42 || len(s.Boards) != 4 || s.IsDone {
		t.Errorf("NewGame = %+v", s)
	}
	if !s.StartTime.Equal(testStart) || !s.FinishTime.IsZero() {
		t.Error("timing not initialized correctly")
	}
	if s.LetterState != letters.Empty() {
		t.Error("letter state should start OPEN")
	}
}

func TestHandleKeyPressBroadcasts(t *testing.T) {
	s := NewGame(1, testWords[ModeThree], testStart)
	s = HandleKeyPress(key.NewChar('w', key.ModeHit), s, testDict, testStart)
	for i, bs := range s.Boards {
		if bs.Board.Current().Word() != "w" {
			t.Errorf("board %d current = %q, want w", i, bs.Board.Current().Word())
		}
	}
	// no evaluation before ENTER
	if s.LetterState != letters.Empty() {
		t.Error("letter state changed without ENTER")
	}
}

func TestHandleKeyPressEvaluatesOnEnter(t *testing.T) {
	s := press(NewGame(1, testWords[ModeTwo], testStart), "wheat", testStart)
	if s.IsDone {
		t.Fatal("should not be done")
	}
	if s.LetterState.Get('h') != key.ModeMiss {
		t.Errorf("h = %s, want MISS", s.LetterState.Get('h'))
	}
	// e is BULLSEYE on sweat and HIT on crane
	if s.LetterState.Get('e') != key.ModeBullseye {
		t.Errorf("e = %s, want BULLSEYE", s.LetterState.Get('e'))
	}
	if s.Boards[0].LetterState.Get('e') != key.ModeBullseye || s.Boards[1].LetterState.Get('e') != key.ModeHit {
		t.Error("per-board letter states not evaluated")
	}
}

func TestSolvedBoardsStopInfluencingKeyboard(t *testing.T) {
	later := testStart.Add(3 * time.Minute)
	s := NewGame(1, testWords[ModeFour], testStart)
	for _, w := range []string{"sweat", "crane", "pilot"} {
		s = press(s, w, later)
	}
	if SolvedCount(s) != 3 || s.IsDone {
		t.Fatalf("solved=%d done=%v, want 3/false", SolvedCount(s), s.IsDone)
	}
	if !s.FinishTime.IsZero() {
		t.Error("finish time set before done")
	}
	want := s.Boards[3].LetterState
	if s.LetterState != want {
		t.Errorf("aggregate should equal the unsolved board's letters:\n got %v\nwant %v", s.LetterState, want)
	}
}

func TestFinishTimeStampedOnce(t *testing.T) {
	done := testStart.Add(5 * time.Minute)
	s := NewGame(1, testWords[ModeTwo], testStart)
	s = press(s, "sweat", testStart.Add(time.Minute))
	s = press(s, "crane", done)
	if !s.IsDone {
		t.Fatal("should be done")
	}
	if !s.FinishTime.Equal(done) {
		t.Errorf("FinishTime = %v, want %v", s.FinishTime, done)
	}
	s = HandleKeyPress(key.EnterKey, s, testDict, done.Add(time.Hour))
	if !s.FinishTime.Equal(done) {
		t.Error("finish time was overwritten")
	}
	if s.LetterState != letters.Empty() {
		t.Error("a fully solved game contributes nothing to the keyboard")
	}
	if got := Duration(s, done.Add(time.Hour)); got != 5*time.Minute {
		t.Errorf("Duration = %v, want 5m", got)
	}
}

func TestDurationUnfinished(t *testing.T) {
	s := NewGame(1, testWords[ModeTwo], testStart)
	if got := Duration(s, testStart.Add(90*time.Second)); got != 90*time.Second {
		t.Errorf("Duration = %v", got)
	}
	if Duration(State{}, testStart) != 0 {
		t.Error("no start time means zero duration")
	}
}

func TestHandleClearInvalid(t *testing.T) {
	s := press(NewGame(1, testWords[ModeTwo], testStart), "qqqqq", testStart)
	if !HasInvalidEntries(s) {
		t.Fatal("expected invalid entries")
	}
	s = HandleClearInvalid(s)
	if HasInvalidEntries(s) {
		t.Error("invalid entries not cleared")
	}
}

func TestFromWordsIndependentModes(t *testing.T) {
	d := FromWords(7, testWords, testStart)
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	two := press(d.State(ModeTwo), "sweat", testStart)
	next := d.With(ModeTwo, two)
	if !reflect.DeepEqual(next.State(ModeFour), d.State(ModeFour)) {
		t.Error("updating two changed four")
	}
	if reflect.DeepEqual(d.State(ModeTwo), next.State(ModeTwo)) {
		t.Error("With mutated the original day state")
	}
}

func TestDayStateJSONRoundTrip(t *testing.T) {
	d := FromWords(7, testWords, testStart)
	d = d.With(ModeFour, press(d.State(ModeFour), "wheat", testStart))
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var back DayState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, d) {
		t.Errorf("round trip mismatch")
	}
}

func TestDayStateValidate(t *testing.T) {
	d := FromWords(7, testWords, testStart)
	broken := d.With(ModeThree, NewGame(7, []string{"sweat"}, testStart))
	if err := broken.Validate(); err == nil {
		t.Error("expected board count error")
	}
	if err := (DayState{PuzzleNumber: 7}).Validate(); err == nil {
		t.Error("expected missing state error")
	}
}

func TestDayWordsValidate(t *testing.T) {
	if err := testWords.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	bad := DayWords{ModeTwo: {"sweat"}, ModeThree: testWords[ModeThree], ModeFour: testWords[ModeFour]}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for short mode")
	}
}

func TestDiff(t *testing.T) {
	s0 := NewGame(1, testWords[ModeTwo], testStart)
	s1 := HandleKeyPress(key.NewChar('s', key.ModeOpen), s0, testDict, testStart)
	changes := Diff(s0, s1)
	// each board: entry length change + slot 0
	if len(changes) != 4 {
		t.Fatalf("got %d changes: %+v", len(changes), changes)
	}
	if changes[0].Kind != ChangeEntry || changes[1].Kind != ChangeSlot || changes[1].Address() != "slot:0:0:0" {
		t.Errorf("unexpected changes: %+v", changes[:2])
	}
	if Diff(s1, s1) != nil {
		t.Error("no changes expected between identical states")
	}

	s2 := press(s1, "weat", testStart)
	var sawKeycap, sawBoard bool
	for _, c := range Diff(s1, s2) {
		switch c.Kind {
		case ChangeKeycap:
			sawKeycap = true
		case ChangeBoard:
			sawBoard = true
		}
	}
	if !sawKeycap || !sawBoard {
		t.Errorf("expected keycap and board changes after solving (keycap=%v board=%v)", sawKeycap, sawBoard)
	}
}

func TestAllChanges(t *testing.T) {
	s := NewGame(1, testWords[ModeTwo], testStart)
	changes := AllChanges(s)
	// per board: board + entry + 5 slots; then 26 keycaps
	if want := 2*(1+1+board.WordLength) + 26; len(changes) != want {
		t.Errorf("len(AllChanges) = %d, want %d", len(changes), want)
	}
}

func TestChangeJSONKeepsZeroIndexes(t *testing.T) {
	s0 := NewGame(1, testWords[ModeTwo], testStart)
	s1 := HandleKeyPress(key.NewChar('s', key.ModeOpen), s0, testDict, testStart)
	changes := Diff(s0, s1)
	if len(changes) < 2 || changes[1].Kind != ChangeSlot {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	data, err := json.Marshal(changes[1])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"boardIndex":0,"entryIndex":0,"slotIndex":0`) {
		t.Errorf("slot change lost its address: %s", data)
	}
	var back Change
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Address() != "slot:0:0:0" {
		t.Errorf("Address() = %q, want slot:0:0:0", back.Address())
	}
}

func TestReplaceBetweenModes(t *testing.T) {
	four := press(NewGame(1, testWords[ModeFour], testStart), "wheat", testStart)
	four = press(four, "treat", testStart)
	two := NewGame(1, testWords[ModeTwo], testStart)

	changes := Replace(two)
	if changes[0].Kind != ChangeReset || changes[0].BoardCount != 2 {
		t.Fatalf("first change = %+v, want reset of 2 boards", changes[0])
	}
	if changes[0].Address() != "reset:2" {
		t.Errorf("Address() = %q", changes[0].Address())
	}
	if len(changes) != 1+len(AllChanges(two)) {
		t.Errorf("got %d changes, want %d", len(changes), 1+len(AllChanges(two)))
	}
	for _, c := range changes[1:] {
		if c.Kind != ChangeKeycap && c.BoardIndex >= 2 {
			t.Errorf("change for a board two does not have: %+v", c)
		}
	}
	// keycaps lit by the four-board game are reset to the two-board view
	var sawW bool
	for _, c := range changes {
		if c.Kind == ChangeKeycap && c.Keycap == 'w' {
			sawW = true
			if c.Mode != key.ModeOpen {
				t.Errorf("keycap w = %s, want OPEN", c.Mode)
			}
		}
	}
	if !sawW {
		t.Error("missing keycap for w")
	}
	if four.LetterState.Get('w') == key.ModeOpen {
		t.Error("four should have marked w")
	}
}
