// Package leaderboard keeps the best results per mode, topic and difficulty.
package leaderboard

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/content"
	"github.com/tomz197/typefall/internal/stats"
)

// AnonymousName replaces empty player names.
const AnonymousName = "Anonymous"

var mockNames = []string{
	"CyberNinja", "TypeRacer", "HomeRowHero", "KeyboardWarrior",
	"SpeedyGonzales", "CodeMaster", "PixelPerfect", "ByteMe",
}

// Key identifies one board.
type Key struct {
	Mode       stats.Mode
	Topic      content.Topic
	Difficulty config.Difficulty
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Mode, k.Topic, k.Difficulty)
}

// Entry is one line of a board. Score is points in survival and WPM in
// classic; Secondary is WPM in survival and accuracy in classic.
type Entry struct {
	Name      string
	Score     int
	Secondary int
	Date      time.Time
	Player    bool // False for seeded entries
}

// Store persists boards between runs.
type Store interface {
	Load() (map[Key][]Entry, error)
	Save(boards map[Key][]Entry) error
}

// Options configures a Board.
type Options struct {
	MaxEntries int
	SeedMock   bool       // Fill empty boards with made-up players
	Rand       *rand.Rand // Used for seeding
	Store      Store      // Optional
	Now        func() time.Time
}

// Board holds every leaderboard. Safe for concurrent use.
type Board struct {
	mu     sync.Mutex
	boards map[Key][]Entry

	max   int
	seed  bool
	rng   *rand.Rand
	store Store
	now   func() time.Time
}

// New creates a board, loading previously stored entries when a Store is set.
func New(opts Options) (*Board, error) {
	b := &Board{
		boards: make(map[Key][]Entry),
		max:    opts.MaxEntries,
		seed:   opts.SeedMock,
		rng:    opts.Rand,
		store:  opts.Store,
		now:    opts.Now,
	}
	if b.max <= 0 {
		b.max = 50
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if b.now == nil {
		b.now = time.Now
	}

	if b.store != nil {
		loaded, err := b.store.Load()
		if err != nil {
			return nil, fmt.Errorf("loading leaderboard: %w", err)
		}
		for k, entries := range loaded {
			sortEntries(entries)
			b.boards[k] = truncate(entries, b.max)
		}
	}
	return b, nil
}

// Entries returns a copy of the board for k, best first.
func (b *Board) Entries(k Key) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.board(k))
}

// Save records a finished game and returns the updated board. The in-memory
// board is updated even when persisting fails.
func (b *Board) Save(k Key, rec stats.Record, name string) ([]Entry, error) {
	if name == "" {
		name = AnonymousName
	}
	e := Entry{
		Name:   name,
		Date:   b.now(),
		Player: true,
	}
	if k.Mode == stats.ModeSurvival {
		e.Score, e.Secondary = rec.Score, rec.WPM
	} else {
		e.Score, e.Secondary = rec.WPM, rec.Accuracy
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries := append(b.board(k), e)
	sortEntries(entries)
	entries = truncate(entries, b.max)
	b.boards[k] = entries

	out := slices.Clone(entries)
	if b.store != nil {
		if err := b.store.Save(b.boards); err != nil {
			return out, fmt.Errorf("saving leaderboard: %w", err)
		}
	}
	return out, nil
}

// Percentile returns the share of entries on board k scoring at or below
// score, as a whole percentage. An empty board yields 0.
func (b *Board) Percentile(k Key, score int) int {
	b.mu.Lock()
	entries := b.board(k)
	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = float64(e.Score)
	}
	b.mu.Unlock()

	if len(scores) == 0 {
		return 0
	}
	slices.Sort(scores)
	return int(math.Round(stat.CDF(float64(score), stat.Empirical, scores, nil) * 100))
}

// board returns the entries for k, seeding an empty board when enabled.
// Callers hold mu.
func (b *Board) board(k Key) []Entry {
	entries, ok := b.boards[k]
	if ok || !b.seed {
		return entries
	}
	entries = b.mockEntries(k)
	b.boards[k] = entries
	return entries
}

func (b *Board) mockEntries(k Key) []Entry {
	classic := k.Mode == stats.ModeClassic
	base := 1000.0
	if classic {
		base = 40
	}
	mult := 1.0
	switch k.Difficulty {
	case config.Medium:
		mult = 1.2
	case config.Hard:
		mult = 1.5
	}

	n := 5 + b.rng.Intn(5)
	entries := make([]Entry, n)
	now := b.now()
	for i := range entries {
		secondary := 30 + b.rng.Intn(50)
		if classic {
			secondary = 90 + b.rng.Intn(10)
		}
		entries[i] = Entry{
			Name:      mockNames[b.rng.Intn(len(mockNames))],
			Score:     int(base * mult * (0.8 + b.rng.Float64()*0.5)),
			Secondary: secondary,
			Date:      now.Add(-time.Duration(b.rng.Int63n(int64(12 * 24 * time.Hour)))),
		}
	}
	sortEntries(entries)
	return truncate(entries, b.max)
}

// sortEntries orders by score, best first. Ties keep insertion order.
func sortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.Score, a.Score)
	})
}

func truncate(entries []Entry, n int) []Entry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
