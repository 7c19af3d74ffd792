package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

func TestJobService_CreateJobNormalizesStatus(t *testing.T) {
	svc := NewJobService(setupTestDB(t))

	job := createJob(t, svc, "Stripe", "Backend Engineer", "Interviewing")
	assert.NotZero(t, job.ID)
	assert.Equal(t, models.StatusInterview, job.Status)

	empty := createJob(t, svc, "Stripe", "SRE", "")
	assert.Equal(t, models.StatusSaved, empty.Status)
	assert.Equal(t, job.CompanyID, empty.CompanyID, "company row is reused")
}

func TestJobService_ListJobsNewestFirst(t *testing.T) {
	svc := NewJobService(setupTestDB(t))
	first := createJob(t, svc, "Acme", "First", "applied")
	second := createJob(t, svc, "Globex", "Second", "saved")

	jobs, err := svc.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)
	assert.Equal(t, "Globex", jobs[0].Company.Name)
}

func TestJobService_UpdateStatusWritesEvent(t *testing.T) {
	svc := NewJobService(setupTestDB(t))
	ctx := context.Background()
	job := createJob(t, svc, "Acme", "Engineer", "applied")

	updated, err := svc.UpdateStatus(ctx, job.ID, models.StatusInterview, models.EventStatusChange, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, updated.Status)

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, got.Status)

	events, err := svc.ListEvents(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventStatusChange, events[0].EventType)
	assert.Contains(t, events[0].Details, "applied to interview")
}

func TestJobService_UpdateStatusSameIsNoop(t *testing.T) {
	svc := NewJobService(setupTestDB(t))
	ctx := context.Background()
	job := createJob(t, svc, "Acme", "Engineer", "applied")

	_, err := svc.UpdateStatus(ctx, job.ID, models.StatusApplied, models.EventStatusChange, "")
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestJobService_UpdateStatusErrors(t *testing.T) {
	svc := NewJobService(setupTestDB(t))
	ctx := context.Background()
	job := createJob(t, svc, "Acme", "Engineer", "applied")

	_, err := svc.UpdateStatus(ctx, 999, models.StatusClosed, models.EventStatusChange, "")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = svc.UpdateStatus(ctx, job.ID, models.ApplicationStatus("offer"), models.EventStatusChange, "")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = svc.GetJob(ctx, 999)
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = svc.ListEvents(ctx, 999)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestBoardSource_FeedsBoard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewJobService(db)
	job := createJob(t, svc, "Acme", "Engineer", "saved")
	// Legacy rows written before statuses were normalized
	require.NoError(t, db.Model(&models.Job{}).Where("id = ?", job.ID).Update("status", "OFFER").Error)

	src := NewBoardSource(svc)
	records, err := src.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "OFFER", records[0].Status)
	assert.Equal(t, "Acme", records[0].Company)
	assert.Equal(t, int64(job.ID), records[0].ID)

	require.NoError(t, src.UpdateStatus(context.Background(), int64(job.ID), models.StatusInterview))
	got, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, got.Status)

	assert.ErrorIs(t, src.UpdateStatus(context.Background(), 12345, models.StatusApplied), ErrJobNotFound)
}
