package client

import (
	"context"
	"time"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/content"
	"github.com/tomz197/typefall/internal/input"
	"github.com/tomz197/typefall/internal/leaderboard"
	"github.com/tomz197/typefall/internal/stats"
)

// shutdownDisplay is how long the shutdown notice stays up before disconnecting.
const shutdownDisplay = 3 * time.Second

// Screen is what the client is currently showing.
type Screen int

const (
	ScreenMenu        Screen = iota // Mode, topic and difficulty selection
	ScreenLoading                   // Waiting for content
	ScreenPlaying                   // A game is running on the server
	ScreenFinished                  // Result card
	ScreenLeaderboard               // Top scores for the current selection
	ScreenShutdown                  // Server is shutting down
)

// menuField is a row of the menu.
type menuField int

const (
	fieldMode menuField = iota
	fieldTopic
	fieldDifficulty
	menuFieldCount
)

// Selection is the game configuration picked in the menu.
type Selection struct {
	Mode       stats.Mode
	Topic      content.Topic
	Difficulty config.Difficulty
}

// DefaultSelection is what the menu starts on.
var DefaultSelection = Selection{
	Mode:       stats.ModeSurvival,
	Topic:      content.TopicStory,
	Difficulty: config.Medium,
}

// Key returns the leaderboard the selection's games are ranked on.
func (s Selection) Key() leaderboard.Key {
	return leaderboard.Key{Mode: s.Mode, Topic: s.Topic, Difficulty: s.Difficulty}
}

// Cycle moves one field of the selection by dir steps, wrapping around.
func (s *Selection) Cycle(field menuField, dir int) {
	switch field {
	case fieldMode:
		s.Mode = cycle(stats.Modes, s.Mode, dir)
	case fieldTopic:
		s.Topic = cycle(content.Topics, s.Topic, dir)
	case fieldDifficulty:
		s.Difficulty = cycle(config.Difficulties, s.Difficulty, dir)
	}
}

func cycle[T comparable](items []T, cur T, dir int) T {
	i := 0
	for j, it := range items {
		if it == cur {
			i = j
			break
		}
	}
	n := len(items)
	return items[((i+dir)%n+n)%n]
}

// loadJob is a content request running in the background.
type loadJob struct {
	cancel context.CancelFunc
	done   chan loadResult
}

type loadResult struct {
	content content.Content
	err     error
}

// outcome is the result card of the last finished game.
type outcome struct {
	record     stats.Record
	key        leaderboard.Key
	rank       int // 1-based position on the board, 0 when not ranked
	percentile int
}

// ClientState holds per-connection UI state. Game state lives on the server.
type ClientState struct {
	Input      input.Input
	Screen     Screen
	Selection  Selection
	field      menuField
	Running    bool
	prevScreen Screen

	content content.Content // Content of the current game, kept for restarts
	loading *loadJob
	last    *outcome

	boardKey  leaderboard.Key
	boardBack Screen // Where to return from the leaderboard

	notice        string // One-line message shown on the menu
	delta         time.Duration
	shutdownTimer time.Duration
	isInactive    bool
	wasInactive   bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Screen:     ScreenMenu,
		prevScreen: ScreenMenu,
		Selection:  DefaultSelection,
		Running:    true,
	}
}
