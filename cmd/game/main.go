package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/content"
	"github.com/tomz197/typefall/internal/leaderboard"
	"github.com/tomz197/typefall/internal/loop/client"
	"github.com/tomz197/typefall/internal/loop/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "typefall: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.GetEnv("TYPEFALL_CONFIG", ""))
	if err != nil {
		return err
	}

	// The terminal belongs to the game, so logs only go to a file when asked.
	var logOut io.Writer = io.Discard
	if path := config.GetEnv("TYPEFALL_LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := config.NewLogger(logOut, "typefall")

	scoresPath, err := scoresFile()
	if err != nil {
		return err
	}
	board, err := leaderboard.New(leaderboard.Options{
		MaxEntries: cfg.Leaderboard.MaxEntries,
		SeedMock:   cfg.Leaderboard.SeedMock,
		Store:      leaderboard.NewCSVStore(scoresPath),
	})
	if err != nil {
		return err
	}

	provider, err := wordBank()
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gs := server.NewServer(cfg, server.Options{Logger: logger})
	go gs.Run(ctx)

	logger.Info("local game started", "scores", scoresPath)
	c := client.NewClient(gs, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: config.GetEnv("USER", ""),
		Config:   cfg,
		Provider: provider,
		Board:    board,
		Logger:   logger,
	})
	if err := c.Run(); err != nil {
		return fmt.Errorf("game error: %w", err)
	}
	return nil
}

// scoresFile returns TYPEFALL_SCORES or a file in the user's config directory.
func scoresFile() (string, error) {
	if path := config.GetEnv("TYPEFALL_SCORES", ""); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating scores file: %w", err)
	}
	return filepath.Join(dir, "typefall", "scores.csv"), nil
}

// wordBank returns the bank named by TYPEFALL_WORDS or the built-in one.
func wordBank() (content.Provider, error) {
	seed := time.Now().UnixNano()
	if path := config.GetEnv("TYPEFALL_WORDS", ""); path != "" {
		bank, err := content.LoadBank(path, seed)
		if err != nil {
			return nil, err
		}
		return bank, nil
	}
	return content.NewBank(seed), nil
}
