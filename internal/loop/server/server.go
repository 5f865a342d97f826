// Package server runs every game on a single goroutine. Clients never touch
// a game directly: keystrokes and start/stop requests are queued and applied
// in arrival order, and each client reads back immutable snapshots.
package server

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/loop"
	"github.com/tomz197/typefall/internal/stats"
)

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	StartGame(clientID int, setup Setup)
	StopGame(clientID int)
	SendKey(clientID int, key string)
	GetSnapshot(clientID int) *loop.Snapshot
	Players() int
}

// Setup describes a game to start. Survival games use Words, classic games Text.
type Setup struct {
	Mode       stats.Mode
	Difficulty config.Difficulty
	Words      []string
	Text       string
}

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	Seed   int64 // Seeds per-game random sources; 0 picks one from the clock
}

// Server owns all running games and steps them at a fixed rate.
type Server struct {
	cfg          *config.Config
	logger       *log.Logger
	rng          *rand.Rand
	clients      map[int]*ClientHandle
	nextClientID int
	commandCh    chan command
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string
	EventsCh chan ClientEvent // Events sent to client (game over, shutdown)

	snapshot atomic.Pointer[loop.Snapshot]
	game     loop.Game // Owned by the server goroutine
}

// Snapshot returns the latest published snapshot, or nil without a game.
func (h *ClientHandle) Snapshot() *loop.Snapshot {
	return h.snapshot.Load()
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type   ClientEventType
	Result stats.Record // For game over events
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventGameOver ClientEventType = iota
	EventServerShutdown
)

type commandKind int

const (
	cmdStart commandKind = iota
	cmdStop
	cmdKey
)

type command struct {
	kind     commandKind
	clientID int
	setup    Setup
	key      string
}

// NewServer creates a new game server.
func NewServer(cfg *config.Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Server{
		cfg:          cfg,
		logger:       logger,
		rng:          rand.New(rand.NewSource(seed)),
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		commandCh:    make(chan command, 1024),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
	}
}

// Run steps the server at the configured tick rate. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	tickTime := s.cfg.TickTime()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()
		s.Step(frameStart)

		elapsed := time.Since(frameStart)
		if elapsed < tickTime {
			time.Sleep(tickTime - elapsed)
		}
	}
}

// Step runs one frame: registrations, queued commands, game ticks, snapshots.
// Run calls it on every tick; it must only ever be called from one goroutine.
func (s *Server) Step(now time.Time) {
	s.processRegistrations()
	s.processCommands(now)
	s.updateGames(now)
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			if s.Players() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the server. A running game is
// cancelled without a result.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// StartGame replaces the client's game with a new one.
func (s *Server) StartGame(clientID int, setup Setup) {
	s.commandCh <- command{kind: cmdStart, clientID: clientID, setup: setup}
}

// StopGame cancels the client's game. No result is emitted.
func (s *Server) StopGame(clientID int) {
	s.commandCh <- command{kind: cmdStop, clientID: clientID}
}

// SendKey queues a key press for the client's game.
func (s *Server) SendKey(clientID int, key string) {
	select {
	case s.commandCh <- command{kind: cmdKey, clientID: clientID, key: key}:
	default:
		// Command queue full, drop the key
	}
}

// GetSnapshot returns the client's latest snapshot, or nil without a game.
func (s *Server) GetSnapshot(clientID int) *loop.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if handle, ok := s.clients[clientID]; ok {
		return handle.Snapshot()
	}
	return nil
}

// Players returns the number of connected clients.
func (s *Server) Players() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				s.endGame(handle)
				close(handle.EventsCh)
				delete(s.clients, clientID)
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

// processCommands applies all queued commands in arrival order.
func (s *Server) processCommands(now time.Time) {
	for {
		select {
		case cmd := <-s.commandCh:
			handle, ok := s.clients[cmd.clientID]
			if !ok {
				continue
			}
			switch cmd.kind {
			case cmdStart:
				s.endGame(handle)
				handle.game = s.newGame(cmd.setup, now)
				handle.snapshot.Store(handle.game.Snapshot())
				s.logger.Info("game started", "client", handle.ID, "user", handle.Username,
					"mode", cmd.setup.Mode, "difficulty", cmd.setup.Difficulty)
			case cmdStop:
				if handle.game != nil {
					s.logger.Info("game cancelled", "client", handle.ID, "user", handle.Username)
				}
				s.endGame(handle)
				handle.snapshot.Store(nil)
			case cmdKey:
				if handle.game != nil {
					handle.game.Key(cmd.key, now)
				}
			}
		default:
			return
		}
	}
}

// updateGames ticks every running game, publishes snapshots and reports
// finished games. A finished game is detached from its handle, so its result
// is reported exactly once.
func (s *Server) updateGames(now time.Time) {
	for _, handle := range s.clients {
		game := handle.game
		if game == nil {
			continue
		}
		if _, over := game.Result(); !over {
			game.Tick(now)
		}
		handle.snapshot.Store(game.Snapshot())

		rec, over := game.Result()
		if !over {
			continue
		}
		s.endGame(handle)
		s.logger.Info("game over", "client", handle.ID, "user", handle.Username,
			"mode", rec.Mode, "score", rec.Score, "wpm", rec.WPM, "accuracy", rec.Accuracy)
		select {
		case handle.EventsCh <- ClientEvent{Type: EventGameOver, Result: rec}:
		default:
			s.logger.Warn("dropped game over event", "client", handle.ID)
		}
	}
}

func (s *Server) newGame(setup Setup, now time.Time) loop.Game {
	if setup.Mode == stats.ModeClassic {
		return loop.NewClassic(setup.Text)
	}
	return loop.NewSurvival(setup.Words, loop.SurvivalOptions{
		Config:     s.cfg,
		Difficulty: setup.Difficulty,
		Rand:       rand.New(rand.NewSource(s.rng.Int63())),
		Start:      now,
	})
}

// endGame detaches the handle's game, releasing whatever it holds.
func (s *Server) endGame(handle *ClientHandle) {
	if c, ok := handle.game.(interface{ Close() }); ok {
		c.Close()
	}
	handle.game = nil
}
