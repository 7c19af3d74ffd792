// board is a terminal kanban for the job tracker. Cards are moved between
// the Saved, Applied, Interview and Closed columns; moves show up
// immediately and are reverted if the server rejects them.
//
// By default it talks to the tracker API (--api). With --db it opens the
// database directly instead.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/board"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/boardui"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/database"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/jobsapi"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/services"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		apiURL    string
		dbURL     string
		sortKey   string
		timeout   time.Duration
		logOutput string
	)

	flagSet := pflag.NewFlagSet("board", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api", envOr("JOBTRACKER_API", "http://localhost:8080/api/v1"), "tracker API base URL")
	flagSet.StringVar(&dbURL, "db", "", "open this database directly instead of using the API")
	flagSet.StringVar(&sortKey, "sort", string(board.SortRecent), "card order: recent, company or title")
	flagSet.DurationVar(&timeout, "timeout", board.DefaultCommitTimeout, "timeout for a single status update")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	logger, closeLog, err := newLogger(logOutput)
	if err != nil {
		return err
	}
	defer closeLog()

	var client board.JobsClient
	if dbURL != "" {
		db, err := database.Connect(dbURL)
		if err != nil {
			return err
		}
		client = services.NewBoardSource(services.NewJobService(db))
	} else {
		client = jobsapi.New(apiURL)
	}

	model := boardui.NewModel(client, boardui.Options{
		Logger:  logger,
		Sort:    board.ParseSortKey(sortKey),
		Timeout: timeout,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// newLogger logs to a file when asked; the alt screen owns the terminal.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
