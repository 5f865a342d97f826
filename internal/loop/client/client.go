// Package client drives one terminal connection: it reads keys, talks to the
// game server and draws the screens.
package client

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/content"
	"github.com/tomz197/typefall/internal/draw"
	"github.com/tomz197/typefall/internal/input"
	"github.com/tomz197/typefall/internal/leaderboard"
	"github.com/tomz197/typefall/internal/loop/server"
	"github.com/tomz197/typefall/internal/stats"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	cfg          *config.Config
	provider     content.Provider
	board        *leaderboard.Board
	styles       styles
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
	width        int
	height       int
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Config       *config.Config     // Defaults to config.Default()
	Provider     content.Provider   // Defaults to the built-in bank
	Board        *leaderboard.Board // Optional; results are not ranked without one
	Renderer     *lipgloss.Renderer // Defaults to lipgloss.DefaultRenderer()
	Logger       *log.Logger
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	provider := opts.Provider
	if provider == nil {
		provider = content.NewBank(time.Now().UnixNano())
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		server:       gs,
		handle:       gs.RegisterClient(opts.Username),
		state:        NewClientState(),
		cfg:          cfg,
		provider:     provider,
		board:        opts.Board,
		styles:       newStyles(renderer),
		chunkWriter:  draw.NewChunkWriter(w),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		logger:       logger.With("user", opts.Username),
	}
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	frameTime := c.cfg.FrameTime()
	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput(frameStart)
		c.processServerEvents()
		c.updateScreen()

		switch c.state.Screen {
		case ScreenMenu:
			c.updateMenu()
		case ScreenLoading:
			c.updateLoading()
		case ScreenPlaying:
			c.updatePlaying()
		case ScreenFinished:
			c.updateFinished()
		case ScreenLeaderboard:
			c.updateLeaderboard()
		case ScreenShutdown:
			c.updateShutdown()
		}

		if err := c.drawFrame(); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
	}

	if job := c.state.loading; job != nil {
		job.cancel()
	}
	c.server.UnregisterClient(c.handle.ID)

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads pending keys and tracks inactivity.
func (c *Client) processInput(now time.Time) {
	c.state.Input = input.ReadInput(c.inputStream)

	idle := now.Sub(c.lastInput)
	switch {
	case len(c.state.Input.Keys) > 0:
		c.lastInput = now
		if c.state.isInactive {
			// The key only dismisses the warning
			c.state.isInactive = false
			c.state.Input.Keys = nil
		}
	case idle > c.cfg.Client.InactivityDisconnect:
		c.logger.Info("disconnecting inactive client")
		c.state.Running = false
	case idle > c.cfg.Client.InactivityWarn:
		c.state.isInactive = true
	}

	if c.state.Input.Quit() || c.state.Input.Closed {
		c.state.Running = false
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventGameOver:
				c.finishGame(event.Result)
			case server.EventServerShutdown:
				c.state.Screen = ScreenShutdown
				c.state.shutdownTimer = shutdownDisplay
			}
		default:
			return
		}
	}
}

// updateScreen tracks terminal resizes.
func (c *Client) updateScreen() {
	w, h, err := c.termSizeFunc()
	if err != nil || w <= 0 || h <= 0 {
		if c.width == 0 {
			c.width, c.height = 80, 24
		}
		return
	}
	if w != c.width || h != c.height {
		c.width, c.height = w, h
		c.chunkWriter.Clear()
	}
}

// updateMenu handles the selection menu.
func (c *Client) updateMenu() {
	for _, key := range c.state.Input.Keys {
		switch key {
		case input.KeyArrowUp:
			c.state.field = (c.state.field + menuFieldCount - 1) % menuFieldCount
		case input.KeyArrowDown:
			c.state.field = (c.state.field + 1) % menuFieldCount
		case input.KeyArrowLeft:
			c.state.Selection.Cycle(c.state.field, -1)
		case input.KeyArrowRight:
			c.state.Selection.Cycle(c.state.field, 1)
		case input.KeyTab:
			c.state.Selection.Cycle(fieldMode, 1)
		case "l", "L":
			c.showLeaderboard(c.state.Selection.Key())
			return
		case input.KeyEnter, " ":
			c.requestContent()
			return
		}
	}
}

// requestContent asks the provider for content in the background.
func (c *Client) requestContent() {
	sel := c.state.Selection
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Client.ContentTimeout)
	job := &loadJob{cancel: cancel, done: make(chan loadResult, 1)}
	go func() {
		cnt, err := c.provider.Generate(ctx, content.Request{
			Topic:      sel.Topic,
			Difficulty: sel.Difficulty,
			Mode:       sel.Mode,
		})
		job.done <- loadResult{content: cnt, err: err}
	}()

	c.state.loading = job
	c.state.notice = ""
	c.state.Screen = ScreenLoading
}

// updateLoading waits for requested content and starts the game.
func (c *Client) updateLoading() {
	job := c.state.loading
	for _, key := range c.state.Input.Keys {
		if key == input.KeyEscape {
			job.cancel()
			c.state.loading = nil
			c.state.Screen = ScreenMenu
			return
		}
	}

	select {
	case res := <-job.done:
		job.cancel()
		c.state.loading = nil
		cnt := res.content
		if res.err != nil {
			c.logger.Warn("content generation failed, using fallback", "err", res.err)
			cnt = content.Content{}
		}
		c.startGame(content.WithFallback(cnt, c.state.Selection.Mode))
	default:
	}
}

// startGame starts a game on the server with the given content.
func (c *Client) startGame(cnt content.Content) {
	input.Reset(c.inputStream)

	sel := c.state.Selection
	c.state.content = cnt
	c.state.last = nil
	c.server.StartGame(c.handle.ID, server.Setup{
		Mode:       sel.Mode,
		Difficulty: sel.Difficulty,
		Words:      cnt.Words,
		Text:       cnt.Text,
	})
	c.state.Screen = ScreenPlaying
}

// updatePlaying forwards keys to the running game.
func (c *Client) updatePlaying() {
	for _, key := range c.state.Input.Keys {
		switch key {
		case input.KeyEscape:
			c.server.StopGame(c.handle.ID)
			c.state.Screen = ScreenMenu
			return
		case input.KeyTab:
			if c.state.Selection.Mode == stats.ModeClassic {
				c.server.StopGame(c.handle.ID)
				c.requestContent()
				return
			}
		default:
			c.server.SendKey(c.handle.ID, key)
		}
	}
}

// finishGame ranks a finished game and shows the result card.
func (c *Client) finishGame(rec stats.Record) {
	if c.state.Screen != ScreenPlaying {
		return
	}
	key := c.state.Selection.Key()
	out := &outcome{record: rec, key: key}

	if c.board != nil {
		entries, err := c.board.Save(key, rec, c.username)
		if err != nil {
			c.logger.Error("failed to save score", "err", err)
		}
		score := mainScore(key.Mode, rec)
		out.rank = rankOf(entries, c.username, score)
		out.percentile = c.board.Percentile(key, score)
	}

	c.state.last = out
	c.state.Screen = ScreenFinished
}

// mainScore is the figure a record is ranked by.
func mainScore(mode stats.Mode, rec stats.Record) int {
	if mode == stats.ModeSurvival {
		return rec.Score
	}
	return rec.WPM
}

// rankOf returns the 1-based position of the player's entry with the given
// score, or 0 when it did not make the board.
func rankOf(entries []leaderboard.Entry, name string, score int) int {
	if name == "" {
		name = leaderboard.AnonymousName
	}
	for i, e := range entries {
		if e.Player && e.Name == name && e.Score == score {
			return i + 1
		}
	}
	return 0
}

// updateFinished handles the result card.
func (c *Client) updateFinished() {
	for _, key := range c.state.Input.Keys {
		switch key {
		case input.KeyEnter, " ":
			c.requestContent()
			return
		case "l", "L":
			c.showLeaderboard(c.state.Selection.Key())
			return
		case input.KeyEscape:
			c.state.Screen = ScreenMenu
			return
		}
	}
}

func (c *Client) showLeaderboard(key leaderboard.Key) {
	c.state.boardKey = key
	c.state.boardBack = c.state.Screen
	c.state.Screen = ScreenLeaderboard
}

// updateLeaderboard handles the leaderboard screen.
func (c *Client) updateLeaderboard() {
	for _, key := range c.state.Input.Keys {
		switch key {
		case input.KeyEscape, input.KeyEnter, "l", "L":
			c.state.Screen = c.state.boardBack
			return
		case input.KeyArrowLeft, input.KeyArrowRight:
			// Flip between difficulties without leaving the screen
			dir := 1
			if key == input.KeyArrowLeft {
				dir = -1
			}
			c.state.boardKey.Difficulty = cycle(config.Difficulties, c.state.boardKey.Difficulty, dir)
		}
	}
}

// updateShutdown handles the shutdown screen countdown.
func (c *Client) updateShutdown() {
	c.state.shutdownTimer -= c.state.delta
	for _, key := range c.state.Input.Keys {
		if key == "q" || key == "Q" || key == input.KeyEscape {
			c.state.Running = false
		}
	}
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
