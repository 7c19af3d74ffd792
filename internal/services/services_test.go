package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/dtos"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createJob(t *testing.T, svc *JobService, company, title, status string) *models.Job {
	t.Helper()
	job, err := svc.CreateJob(context.Background(), &dtos.JobCreationRequest{
		CompanyName: company,
		Title:       title,
		JobLink:     "https://jobs.example.com/" + strings.ToLower(title),
		Description: title + " at " + company,
		Status:      status,
	})
	require.NoError(t, err)
	return job
}
