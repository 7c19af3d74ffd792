package board

import (
	"context"
	"log/slog"
	"time"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

// RawRecord is a job as returned by the list operation. Status is
// whatever the backend holds and is normalized on Load.
type RawRecord struct {
	ID            int64
	PositionTitle string
	Company       string
	Location      string
	JobPostingURL string
	Notes         string
	Status        string
	CreatedAt     time.Time
}

// JobsClient is the remote jobs collaborator the board depends on.
type JobsClient interface {
	ListJobs(ctx context.Context) ([]RawRecord, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
}

// Loader fills a Store from a JobsClient.
type Loader struct {
	client JobsClient
	store  *Store
	logger *slog.Logger
}

func NewLoader(client JobsClient, store *Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{client: client, store: store, logger: logger}
}

// Refresh replaces the store contents with the current job list. A failed
// list call leaves the board empty rather than returning an error.
func (l *Loader) Refresh(ctx context.Context) int {
	records, err := l.client.ListJobs(ctx)
	if err != nil {
		l.logger.Warn("job list failed, showing empty board", "error", err)
		records = nil
	}
	l.store.Load(records)
	return l.store.Len()
}
