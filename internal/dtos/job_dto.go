package dtos

import (
	"time"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type JobCreationRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Title       string `json:"role_title" binding:"required"`
	JobLink     string `json:"job_link" binding:"required"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	Location    string   `json:"location"`
	SalaryRange string   `json:"salary_range"`
	TechStack   []string `json:"tech_stack"`
	ResumeLink  string   `json:"resume_link"`
	Notes       string   `json:"notes"`
	Status      string   `json:"status"` // normalized; "saved" if empty
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// JobApplication is the board's view of a job, as served by GET /jobs.
type JobApplication struct {
	ID                int64                    `json:"id"`
	PositionTitle     string                   `json:"position_title"`
	Company           string                   `json:"company"`
	Location          string                   `json:"location"`
	JobPostingURL     string                   `json:"job_posting_url"`
	Notes             string                   `json:"notes"`
	ApplicationStatus models.ApplicationStatus `json:"application_status"`
	CreatedAt         time.Time                `json:"created_at"`
}

// NewJobApplication flattens a Job (with its Company preloaded).
func NewJobApplication(job *models.Job) JobApplication {
	return JobApplication{
		ID:                int64(job.ID),
		PositionTitle:     job.Title,
		Company:           job.Company.Name,
		Location:          job.Location,
		JobPostingURL:     job.JobLink,
		Notes:             job.Notes,
		ApplicationStatus: job.Status,
		CreatedAt:         job.CreatedAt,
	}
}

type BoardColumn struct {
	Status models.ApplicationStatus `json:"status"`
	Label  string                   `json:"label"`
	Jobs   any                      `json:"jobs"`
}

type BoardResponse struct {
	Search  string        `json:"q"`
	Sort    string        `json:"sort"`
	Columns []BoardColumn `json:"columns"`
}
