package leaderboard

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/content"
	"github.com/tomz197/typefall/internal/stats"
)

// row is the CSV layout of one entry.
type row struct {
	Mode       string `csv:"mode"`
	Topic      string `csv:"topic"`
	Difficulty string `csv:"difficulty"`
	Name       string `csv:"name"`
	Score      int    `csv:"score"`
	Secondary  int    `csv:"secondary"`
	Date       string `csv:"date"`
	Player     bool   `csv:"player"`
}

// CSVStore keeps every board in a single CSV file.
type CSVStore struct {
	Path string
}

var _ Store = (*CSVStore)(nil)

// NewCSVStore returns a store writing to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

// Load reads all boards. A missing file is an empty leaderboard.
func (s *CSVStore) Load() (map[Key][]Entry, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[Key][]Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return map[Key][]Entry{}, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}

	boards := make(map[Key][]Entry)
	for i, r := range rows {
		k, e, err := r.decode()
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.Path, i+2, err)
		}
		boards[k] = append(boards[k], e)
	}
	return boards, nil
}

// Save replaces the file with the given boards.
func (s *CSVStore) Save(boards map[Key][]Entry) error {
	keys := make([]Key, 0, len(boards))
	for k := range boards {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(
			cmp.Compare(a.Mode, b.Mode),
			cmp.Compare(a.Topic, b.Topic),
			cmp.Compare(a.Difficulty, b.Difficulty),
		)
	})

	rows := make([]row, 0)
	for _, k := range keys {
		for _, e := range boards[k] {
			rows = append(rows, encode(k, e))
		}
	}

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

func encode(k Key, e Entry) row {
	return row{
		Mode:       k.Mode.String(),
		Topic:      k.Topic.String(),
		Difficulty: k.Difficulty.String(),
		Name:       e.Name,
		Score:      e.Score,
		Secondary:  e.Secondary,
		Date:       e.Date.UTC().Format(time.RFC3339),
		Player:     e.Player,
	}
}

func (r row) decode() (Key, Entry, error) {
	mode, err := stats.ParseMode(r.Mode)
	if err != nil {
		return Key{}, Entry{}, err
	}
	topic, err := content.ParseTopic(r.Topic)
	if err != nil {
		return Key{}, Entry{}, err
	}
	diff, err := config.ParseDifficulty(r.Difficulty)
	if err != nil {
		return Key{}, Entry{}, err
	}
	date, err := time.Parse(time.RFC3339, r.Date)
	if err != nil {
		return Key{}, Entry{}, fmt.Errorf("bad date %q: %w", r.Date, err)
	}
	return Key{Mode: mode, Topic: topic, Difficulty: diff}, Entry{
		Name:      r.Name,
		Score:     r.Score,
		Secondary: r.Secondary,
		Date:      date,
		Player:    r.Player,
	}, nil
}
