// Package content supplies the words and texts games are played with.
package content

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/stats"
)

//go:embed bank.yaml
var bankYAML []byte

// SurvivalWordCount is how many words a survival game is given.
const SurvivalWordCount = 40

// ErrUnknownTopic is returned for topics missing from a bank.
var ErrUnknownTopic = errors.New("unknown topic")

// Fallbacks used when a provider comes back empty.
var (
	FallbackWords = []string{"error", "loading", "words", "failed", "retry", "typing", "game", "fun"}
	FallbackText  = "The quick brown fox jumps over the lazy dog. Programming is fun and rewarding."
)

// Topic is the theme content is drawn from.
type Topic int

const (
	TopicStory Topic = iota
	TopicFacts
	TopicCode
	TopicJokes
	TopicQuotes
)

// Topics lists every topic in menu order.
var Topics = []Topic{TopicStory, TopicFacts, TopicCode, TopicJokes, TopicQuotes}

func (t Topic) String() string {
	switch t {
	case TopicStory:
		return "Story"
	case TopicFacts:
		return "Fun Facts"
	case TopicCode:
		return "Code Snippets"
	case TopicJokes:
		return "Jokes"
	case TopicQuotes:
		return "Inspirational Quotes"
	default:
		return fmt.Sprintf("Topic(%d)", int(t))
	}
}

// ParseTopic parses a topic by display name or bank key, case-insensitively.
func ParseTopic(s string) (Topic, error) {
	for _, t := range Topics {
		if strings.EqualFold(s, t.String()) || strings.EqualFold(s, t.key()) {
			return t, nil
		}
	}
	return TopicStory, fmt.Errorf("%w: %q", ErrUnknownTopic, s)
}

func (t Topic) key() string {
	switch t {
	case TopicStory:
		return "story"
	case TopicFacts:
		return "facts"
	case TopicCode:
		return "code"
	case TopicJokes:
		return "jokes"
	case TopicQuotes:
		return "quotes"
	default:
		return ""
	}
}

// Request asks for content for one game.
type Request struct {
	Topic      Topic
	Difficulty config.Difficulty
	Mode       stats.Mode
}

// Content is what a game is played with: Words for survival, Text for classic.
type Content struct {
	Words []string
	Text  string
}

// Provider produces content. Implementations may be remote and slow, so
// callers pass a deadline.
type Provider interface {
	Generate(ctx context.Context, req Request) (Content, error)
}

// Bank is a Provider backed by a fixed word and text bank. Safe for
// concurrent use.
type Bank struct {
	topics map[string]topicBank

	mu  sync.Mutex
	rng *rand.Rand
}

type topicBank struct {
	Words []string `yaml:"words"`
	Texts []string `yaml:"texts"`
}

type bankFile struct {
	Topics map[string]topicBank `yaml:"topics"`
}

var _ Provider = (*Bank)(nil)

// NewBank returns the built-in bank.
func NewBank(seed int64) *Bank {
	b, err := ParseBank(bankYAML, seed)
	if err != nil {
		panic(fmt.Sprintf("content: invalid embedded bank: %v", err))
	}
	return b
}

// LoadBank reads a bank from a YAML file with the same layout as the built-in one.
func LoadBank(path string, seed int64) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading word bank: %w", err)
	}
	return ParseBank(data, seed)
}

// ParseBank parses a YAML bank.
func ParseBank(data []byte, seed int64) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing word bank: %w", err)
	}
	if len(f.Topics) == 0 {
		return nil, errors.New("word bank has no topics")
	}
	return &Bank{
		topics: f.Topics,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Generate implements Provider.
func (b *Bank) Generate(ctx context.Context, req Request) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}
	tb, ok := b.topics[req.Topic.key()]
	if !ok {
		return Content{}, fmt.Errorf("%w: %s", ErrUnknownTopic, req.Topic)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if req.Mode == stats.ModeSurvival {
		words := SanitizeWords(tb.Words)
		words = filterByLength(words, req.Difficulty)
		b.rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
		if len(words) > SurvivalWordCount {
			words = words[:SurvivalWordCount]
		}
		return WithFallback(Content{Words: words}, req.Mode), nil
	}

	var text string
	if len(tb.Texts) > 0 {
		text = SanitizeText(tb.Texts[b.rng.Intn(len(tb.Texts))])
	}
	return WithFallback(Content{Text: text}, req.Mode), nil
}

// minBandSize is the smallest filtered pool worth keeping; thinner bands use
// the whole topic instead.
const minBandSize = 8

// filterByLength keeps words whose length suits the difficulty: short words
// for easy, mid-length for medium, long for hard.
func filterByLength(words []string, d config.Difficulty) []string {
	lo, hi := 1, 5
	switch d {
	case config.Medium:
		lo, hi = 4, 8
	case config.Hard:
		lo, hi = 6, 1<<30
	}
	band := make([]string, 0, len(words))
	for _, w := range words {
		if n := utf8.RuneCountInString(w); n >= lo && n <= hi {
			band = append(band, w)
		}
	}
	if len(band) < minBandSize {
		return words
	}
	return band
}

// SanitizeWords trims every word and drops empty ones. The input is not modified.
func SanitizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// SanitizeText collapses runs of whitespace into single spaces and trims the ends.
func SanitizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// WithFallback fills empty content with the fallback for mode.
func WithFallback(c Content, mode stats.Mode) Content {
	if mode == stats.ModeSurvival && len(c.Words) == 0 {
		c.Words = append([]string(nil), FallbackWords...)
	}
	if mode == stats.ModeClassic && c.Text == "" {
		c.Text = FallbackText
	}
	return c
}
