// Package session owns one player's day: the per-mode games, the streak,
// the selected mode, persistence and change notifications.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"multidle/internal/board"
	"multidle/internal/game"
	"multidle/internal/key"
	"multidle/internal/store"
	"multidle/internal/streak"
	"multidle/internal/words"
)

// DefaultClearDelay is how long a rejected row stays on screen.
const DefaultClearDelay = 1200 * time.Millisecond

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d unless the returned Timer is stopped.
type Scheduler func(d time.Duration, f func()) Timer

// AfterFunc is the Scheduler backed by time.AfterFunc.
func AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Options configures a Service. Store, Words and Dict are required.
type Options struct {
	Namespace  string
	Store      store.KV
	Words      words.Source
	Dict       board.Dictionary
	Clock      func() time.Time
	Schedule   Scheduler
	ClearDelay time.Duration
	Bus        *Bus
}

// Service is the authoritative container for one player's state. Every
// method is safe for concurrent use.
type Service struct {
	ns         string
	kv         store.KV
	source     words.Source
	dict       board.Dictionary
	now        func() time.Time
	schedule   Scheduler
	clearDelay time.Duration
	bus        *Bus
	logger     zerolog.Logger

	mu      sync.Mutex
	day     game.DayState
	streak  streak.Streak
	mode    game.Mode
	pending Timer
	gen     uint64
}

// New loads persisted snapshots for opts.Namespace. Snapshots that are
// missing, corrupt or from another day are replaced with fresh state.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Store == nil || opts.Words == nil || opts.Dict == nil {
		return nil, errors.New("session: store, words and dictionary are required")
	}
	s := &Service{
		ns:         opts.Namespace,
		kv:         opts.Store,
		source:     opts.Words,
		dict:       opts.Dict,
		now:        opts.Clock,
		schedule:   opts.Schedule,
		clearDelay: opts.ClearDelay,
		bus:        opts.Bus,
		logger:     log.With().Str("session", opts.Namespace).Logger(),
		mode:       game.ModeFour,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.schedule == nil {
		s.schedule = AfterFunc
	}
	if s.clearDelay <= 0 {
		s.clearDelay = DefaultClearDelay
	}
	if s.bus == nil {
		s.bus = NewBus()
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) key(name string) string {
	return store.Key(s.ns, name)
}

func (s *Service) load(ctx context.Context) error {
	now := s.now()
	today := words.DayNumber(now)

	var day game.DayState
	err := store.GetJSON(ctx, s.kv, s.key(store.KeyDayState), &day)
	switch {
	case err == nil && day.PuzzleNumber == today:
		if verr := day.Validate(); verr == nil {
			s.day = day
		} else {
			s.logger.Warn().Err(verr).Msg("stored day state is invalid, starting fresh")
		}
	case err == nil:
		s.logger.Info().Int("stored", day.PuzzleNumber).Int("today", today).Msg("stored day state is stale")
	case !errors.Is(err, store.ErrNotFound):
		s.logger.Warn().Err(err).Msg("failed to load day state, starting fresh")
	}
	if s.day.States == nil {
		fresh, err := s.freshDay(today, now)
		if err != nil {
			return err
		}
		s.day = fresh
		s.saveDay(ctx)
	}

	var st streak.Streak
	err = store.GetJSON(ctx, s.kv, s.key(store.KeyStreak), &st)
	switch {
	case err == nil:
		if verr := st.Validate(); verr == nil {
			s.streak = st
		} else {
			s.logger.Warn().Err(verr).Msg("stored streak is invalid, starting fresh")
		}
	case !errors.Is(err, store.ErrNotFound):
		s.logger.Warn().Err(err).Msg("failed to load streak, starting fresh")
	}
	if s.streak.Record == nil {
		s.streak = streak.Empty()
	}

	var stored string
	if err := store.GetJSON(ctx, s.kv, s.key(store.KeyGameMode), &stored); err == nil {
		if m, perr := game.ParseMode(stored); perr == nil {
			s.mode = m
		}
	}
	return nil
}

func (s *Service) freshDay(day int, now time.Time) (game.DayState, error) {
	dw, err := s.source.DayWords(day)
	if err != nil {
		return game.DayState{}, fmt.Errorf("words for day %d: %w", day, err)
	}
	if err := dw.Validate(); err != nil {
		return game.DayState{}, fmt.Errorf("words for day %d: %w", day, err)
	}
	return game.FromWords(day, dw, now), nil
}

func (s *Service) saveDay(ctx context.Context) {
	if err := store.SetJSON(ctx, s.kv, s.key(store.KeyDayState), s.day); err != nil {
		s.logger.Warn().Err(err).Msg("failed to save day state")
	}
}

func (s *Service) saveStreak(ctx context.Context) {
	if err := store.SetJSON(ctx, s.kv, s.key(store.KeyStreak), s.streak); err != nil {
		s.logger.Warn().Err(err).Msg("failed to save streak")
	}
}

// rollover replaces the day when the clock has moved past it. Must be
// called with mu held.
func (s *Service) rollover(ctx context.Context, now time.Time) ([]Event, error) {
	today := words.DayNumber(now)
	if s.day.PuzzleNumber == today {
		return nil, nil
	}
	fresh, err := s.freshDay(today, now)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("from", s.day.PuzzleNumber).Int("to", today).Msg("day rollover")
	s.cancelPending()
	s.day = fresh
	s.saveDay(ctx)
	return []Event{{Kind: EventDayRollover, Mode: s.mode, Changes: game.Replace(s.day.State(s.mode))}}, nil
}

func (s *Service) cancelPending() {
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// Press applies k to the current mode's game and returns that mode with
// the updated game.
func (s *Service) Press(ctx context.Context, k key.Key) (game.Mode, game.State, error) {
	s.mu.Lock()
	now := s.now()
	events, err := s.rollover(ctx, now)
	if err != nil {
		s.mu.Unlock()
		return "", game.State{}, err
	}
	s.cancelPending()

	mode := s.mode
	old := s.day.State(mode)
	cur := game.HandleKeyPress(k, old, s.dict, now)
	s.day = s.day.With(mode, cur)
	s.saveDay(ctx)

	events = append(events, Event{Kind: EventKeyApplied, Mode: mode, Key: key.Cap(k), Changes: game.Diff(old, cur)})
	for i, bs := range cur.Boards {
		if bs.Board.IsSolved && !old.Boards[i].Board.IsSolved {
			events = append(events, Event{Kind: EventBoardSolved, Mode: mode, BoardIndex: i})
		}
	}
	if cur.IsDone && !old.IsDone {
		result := game.NewResult(cur, mode, now)
		if result.IsSolved {
			s.streak = streak.IncStreak(result, s.streak)
			s.saveStreak(ctx)
		}
		s.logger.Info().Str("mode", string(mode)).Ints("trials", result.Trials).Msg("game completed")
		events = append(events, Event{Kind: EventAllDone, Mode: mode, Result: &result})
	}
	if game.HasInvalidEntries(cur) {
		events = append(events, Event{Kind: EventInvalidEntry, Mode: mode})
		gen := s.gen
		s.pending = s.schedule(s.clearDelay, func() { s.clearFromTimer(gen) })
	}
	s.mu.Unlock()

	s.bus.Publish(events...)
	return mode, cur, nil
}

func (s *Service) clearFromTimer(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	events := s.clearInvalid(context.Background())
	s.mu.Unlock()
	s.bus.Publish(events...)
}

// clearInvalid must be called with mu held.
func (s *Service) clearInvalid(ctx context.Context) []Event {
	old := s.day.State(s.mode)
	if !game.HasInvalidEntries(old) {
		return nil
	}
	cur := game.HandleClearInvalid(old)
	s.day = s.day.With(s.mode, cur)
	s.saveDay(ctx)
	return []Event{{Kind: EventStateChanged, Mode: s.mode, Changes: game.Diff(old, cur)}}
}

// ClearInvalid wipes rejected rows now instead of waiting for the timer.
func (s *Service) ClearInvalid(ctx context.Context) (game.Mode, game.State, error) {
	s.mu.Lock()
	events, err := s.rollover(ctx, s.now())
	if err != nil {
		s.mu.Unlock()
		return "", game.State{}, err
	}
	s.cancelPending()
	events = append(events, s.clearInvalid(ctx)...)
	mode, cur := s.mode, s.day.State(s.mode)
	s.mu.Unlock()

	s.bus.Publish(events...)
	return mode, cur, nil
}

// SetMode switches the active game. The other modes keep their progress.
func (s *Service) SetMode(ctx context.Context, m game.Mode) error {
	if _, err := game.ParseMode(string(m)); err != nil {
		return err
	}
	s.mu.Lock()
	events, err := s.rollover(ctx, s.now())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.cancelPending()
	s.mode = m
	if err := store.SetJSON(ctx, s.kv, s.key(store.KeyGameMode), m); err != nil {
		s.logger.Warn().Err(err).Msg("failed to save game mode")
	}
	events = append(events,
		Event{Kind: EventModeChanged, Mode: m},
		Event{Kind: EventStateChanged, Mode: m, Changes: game.Replace(s.day.State(m))},
	)
	s.mu.Unlock()

	s.bus.Publish(events...)
	return nil
}

// Current returns the active mode and its game, rolling the day over first
// if needed.
func (s *Service) Current(ctx context.Context) (game.Mode, game.State, error) {
	s.mu.Lock()
	events, err := s.rollover(ctx, s.now())
	mode, cur := s.mode, s.day.State(s.mode)
	s.mu.Unlock()
	if err != nil {
		return "", game.State{}, err
	}
	s.bus.Publish(events...)
	return mode, cur, nil
}

// Day returns every mode's game for today.
func (s *Service) Day(ctx context.Context) (game.DayState, error) {
	s.mu.Lock()
	events, err := s.rollover(ctx, s.now())
	day := s.day
	s.mu.Unlock()
	if err != nil {
		return game.DayState{}, err
	}
	s.bus.Publish(events...)
	return day, nil
}

// Results projects every mode of today.
func (s *Service) Results(ctx context.Context) (map[game.Mode]game.Result, error) {
	day, err := s.Day(ctx)
	if err != nil {
		return nil, err
	}
	return game.DayResults(day, s.now()), nil
}

// Streak returns the persisted record.
func (s *Service) Streak() streak.Streak {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

// Subscribe registers fn for this session's events.
func (s *Service) Subscribe(fn func(Event)) func() {
	return s.bus.Subscribe(fn)
}

// Snapshot is the full client view of a session.
type Snapshot struct {
	Mode    game.Mode     `json:"mode"`
	State   game.State    `json:"state"`
	Changes []game.Change `json:"changes"`
}

// Sync returns the active game with a full change list for a client that
// has nothing yet.
func (s *Service) Sync(ctx context.Context) (Snapshot, error) {
	mode, cur, err := s.Current(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Mode: mode, State: cur, Changes: game.AllChanges(cur)}, nil
}

// Close cancels any pending clear.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPending()
}

