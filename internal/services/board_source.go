package services

import (
	"context"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/board"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

// BoardSource serves the board straight from the database.
type BoardSource struct {
	Jobs *JobService
}

func NewBoardSource(jobs *JobService) *BoardSource {
	return &BoardSource{Jobs: jobs}
}

func (b *BoardSource) ListJobs(ctx context.Context) ([]board.RawRecord, error) {
	jobs, err := b.Jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]board.RawRecord, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, board.RawRecord{
			ID:            int64(j.ID),
			PositionTitle: j.Title,
			Company:       j.Company.Name,
			Location:      j.Location,
			JobPostingURL: j.JobLink,
			Notes:         j.Notes,
			Status:        string(j.Status),
			CreatedAt:     j.CreatedAt,
		})
	}
	return out, nil
}

func (b *BoardSource) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	_, err := b.Jobs.UpdateStatus(ctx, uint(id), status, models.EventStatusChange, "")
	return err
}
