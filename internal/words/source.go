package words

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"multidle/internal/game"
)

// Schedule picks each day's solutions from a fixed index table.
type Schedule struct {
	words []string
	index map[game.Mode][][]int
}

// ParseSchedule decodes a {"two": [[i, j], ...], ...} table of indexes
// into words.
func ParseSchedule(data []byte, words []string) (*Schedule, error) {
	var index map[game.Mode][][]int
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	for _, m := range game.Modes {
		rows, ok := index[m]
		if !ok || len(rows) == 0 {
			return nil, fmt.Errorf("schedule has no rows for mode %s", m)
		}
		for i, row := range rows {
			if len(row) != m.BoardCount() {
				return nil, fmt.Errorf("schedule %s row %d has %d entries", m, i, len(row))
			}
			for _, idx := range row {
				if idx < 0 || idx >= len(words) {
					return nil, fmt.Errorf("schedule %s row %d: index %d out of range", m, i, idx)
				}
			}
		}
	}
	return &Schedule{words: words, index: index}, nil
}

// LoadSchedule reads the table at path, or the built-in table if path is
// empty.
func LoadSchedule(path string, words []string) (*Schedule, error) {
	if path == "" {
		return ParseSchedule(embeddedSchedule, words)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	return ParseSchedule(data, words)
}

// DayWords looks up row day % ScheduleLength, wrapping again if the table
// is shorter.
func (s *Schedule) DayWords(day int) (game.DayWords, error) {
	out := make(game.DayWords, len(game.Modes))
	for _, m := range game.Modes {
		rows := s.index[m]
		row := rows[(day%ScheduleLength)%len(rows)]
		words := make([]string, len(row))
		for i, idx := range row {
			words[i] = s.words[idx]
		}
		out[m] = words
	}
	return out, nil
}

// Hashed derives each day's solutions from HMAC-SHA256 over the salt, so
// the words cannot be guessed from the list order.
type Hashed struct {
	words []string
	salt  string
}

// NewHashed needs at least as many words as the largest mode has boards.
func NewHashed(words []string, salt string) (*Hashed, error) {
	if len(words) < game.ModeFour.BoardCount() {
		return nil, fmt.Errorf("need at least %d words, got %d", game.ModeFour.BoardCount(), len(words))
	}
	return &Hashed{words: words, salt: salt}, nil
}

func (h *Hashed) index(day int, m game.Mode, slot int) int {
	mac := hmac.New(sha256.New, []byte(h.salt))
	fmt.Fprintf(mac, "%d/%s/%d", day%ScheduleLength, m, slot)
	sum := mac.Sum(nil)
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(len(h.words)))
}

// DayWords picks distinct words per mode. A collision moves on to the next
// unused word.
func (h *Hashed) DayWords(day int) (game.DayWords, error) {
	out := make(game.DayWords, len(game.Modes))
	for _, m := range game.Modes {
		used := make(map[int]bool, m.BoardCount())
		words := make([]string, 0, m.BoardCount())
		for slot := range m.BoardCount() {
			idx := h.index(day, m, slot)
			for used[idx] {
				idx = (idx + 1) % len(h.words)
			}
			used[idx] = true
			words = append(words, h.words[idx])
		}
		out[m] = words
	}
	return out, nil
}
