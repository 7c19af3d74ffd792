package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	LastHistoryID uint64 `json:"last_history_id"`
}

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"company_name"`

	// omitempty keeps Job -> Company -> Jobs from recursing in responses
	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID uint `json:"company_id"`
	// Filled only through Preload("Company")
	Company Company `json:"company"`

	Title       string            `gorm:"not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	JobLink     string            `json:"job_link"`
	Location    string            `json:"location"`
	Notes       string            `gorm:"type:text" json:"notes"`
	ResumeLink  string            `json:"resume_link"`
	Status      ApplicationStatus `gorm:"type:varchar(16);default:'saved';index" json:"status"`
}

// Event types recorded in JobEvent.EventType.
const (
	EventStatusChange = "STATUS_CHANGE"
	EventEmailUpdate  = "EMAIL_UPDATE"
)

type JobEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     uint      `gorm:"index" json:"job_id"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// All returns every model the database layer migrates.
func All() []any {
	return []any{&Company{}, &Job{}, &JobEvent{}, &User{}, &ProcessedEmail{}}
}
