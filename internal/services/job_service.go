package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/dtos"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

type JobService struct {
	DB *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{
		DB: db,
	}
}

func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	db := s.DB.WithContext(ctx)

	// Companies are shared between jobs, so reuse an existing row
	var company models.Company
	err := db.Where(models.Company{Name: req.CompanyName}).
		FirstOrCreate(&company).Error
	if err != nil {
		return nil, fmt.Errorf("find or create company: %w", err)
	}

	job := &models.Job{
		CompanyID:   company.ID,
		Company:     company,
		Title:       req.Title,
		Description: req.Description,
		JobLink:     req.JobLink,
		Location:    req.Location,
		Notes:       req.Notes,
		ResumeLink:  req.ResumeLink,
		Status:      models.NormalizeStatus(req.Status),
	}
	if err := db.Omit("Company").Create(job).Error; err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// ListJobs returns every job, newest first, with its company.
func (s *JobService) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	err := s.DB.WithContext(ctx).
		Preload("Company").
		Order("created_at DESC").Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *JobService) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).Preload("Company").First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return &job, nil
}

// UpdateStatus moves a job to status and records a JobEvent. Setting the
// status a job already has succeeds without writing an event.
func (s *JobService) UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus, eventType, details string) (*models.Job, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	var job models.Job
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Company").First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return err
		}
		if job.Status == status {
			return nil
		}

		prev := job.Status
		if err := tx.Model(&job).Update("status", status).Error; err != nil {
			return err
		}
		job.Status = status

		if details == "" {
			details = fmt.Sprintf("Status changed from %s to %s", prev, status)
		}
		return tx.Create(&models.JobEvent{
			JobID:     job.ID,
			EventType: eventType,
			Details:   details,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update status of job %d: %w", id, err)
	}
	return &job, nil
}

// ListEvents returns the audit trail of a job, oldest first.
func (s *JobService) ListEvents(ctx context.Context, id uint) ([]models.JobEvent, error) {
	if _, err := s.GetJob(ctx, id); err != nil {
		return nil, err
	}
	var events []models.JobEvent
	err := s.DB.WithContext(ctx).Where("job_id = ?", id).Order("id ASC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events of job %d: %w", id, err)
	}
	return events, nil
}
