// Package words provides the guess dictionary and the daily solution
// sources.
package words

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"multidle/internal/board"
	"multidle/internal/game"
)

//go:embed data/words.json
var embeddedWords []byte

//go:embed data/schedule.json
var embeddedSchedule []byte

// ScheduleLength is the number of days before the daily words repeat.
const ScheduleLength = 400

// Source yields each mode's solutions for a puzzle day.
type Source interface {
	DayWords(day int) (game.DayWords, error)
}

// List is the on-disk shape of a word list.
type List struct {
	Words []string `json:"words"`
}

// Set is a dictionary of accepted guesses.
type Set map[string]struct{}

// NewSet builds a set from words.
func NewSet(words []string) Set {
	s := make(Set, len(words))
	lo.ForEach(words, func(w string, _ int) {
		s[w] = struct{}{}
	})
	return s
}

// Contains reports whether word is accepted.
func (s Set) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// Len is the number of accepted words.
func (s Set) Len() int {
	return len(s)
}

func isWord(w string) bool {
	if len(w) != board.WordLength {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// Parse decodes a JSON word list, lowercasing entries and dropping
// anything that is not five letters.
func Parse(data []byte) ([]string, error) {
	var wl List
	if err := json.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("decode word list: %w", err)
	}
	words := lo.FilterMap(wl.Words, func(w string, _ int) (string, bool) {
		w = strings.ToLower(strings.TrimSpace(w))
		if !isWord(w) {
			log.Warn().Str("word", w).Msg("skipping word: not 5 letters")
			return "", false
		}
		return w, true
	})
	if len(words) == 0 {
		return nil, errors.New("word list is empty")
	}
	return words, nil
}

// Load reads the word list at path, or the built-in list if path is empty.
func Load(path string) ([]string, error) {
	if path == "" {
		return Parse(embeddedWords)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return Parse(data)
}

// DayNumber is the puzzle number for t: the UTC day of the year, from 1.
func DayNumber(t time.Time) int {
	return t.UTC().YearDay()
}
