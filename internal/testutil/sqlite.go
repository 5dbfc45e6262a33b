// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"jobboard/internal/database"
	"jobboard/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB returns an isolated, migrated in-memory SQLite database. A single
// connection keeps every statement on the same in-memory instance.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:jobboard_test_%d?mode=memory&cache=shared&_foreign_keys=1", dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts an active user with the given role. The password is "Password123!".
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateEmployer inserts an employer user owning a company.
func CreateEmployer(t *testing.T, db *gorm.DB, username, companyName string) (*models.User, *models.Company) {
	t.Helper()
	u := CreateUser(t, db, username, models.RoleEmployer)
	c := &models.Company{UserID: u.ID, Name: companyName, Industry: "Technology", Location: "Harare"}
	require.NoError(t, db.Create(c).Error)
	return u, c
}

// CreateJobSeeker inserts a jobseeker user with a profile.
func CreateJobSeeker(t *testing.T, db *gorm.DB, username string) (*models.User, *models.JobSeeker) {
	t.Helper()
	u := CreateUser(t, db, username, models.RoleJobSeeker)
	js := &models.JobSeeker{UserID: u.ID, FirstName: "Tariro", Surname: "Moyo", Location: "Bulawayo"}
	require.NoError(t, db.Create(js).Error)
	return u, js
}

// JobOption customizes CreateJob.
type JobOption func(*models.Job)

// WithStatus sets the job status.
func WithStatus(s models.JobStatus) JobOption {
	return func(j *models.Job) { j.Status = s }
}

// WithCreatedAt sets the job creation time.
func WithCreatedAt(ts time.Time) JobOption {
	return func(j *models.Job) { j.CreatedAt = ts }
}

// Featured marks the job as featured.
func Featured() JobOption {
	return func(j *models.Job) { j.IsFeatured = true }
}

// WithCategory sets the job category.
func WithCategory(id uint) JobOption {
	return func(j *models.Job) { j.CategoryID = &id }
}

// WithJobType sets the job type.
func WithJobType(jt models.JobType) JobOption {
	return func(j *models.Job) { j.JobType = jt }
}

// WithLocation sets the job location.
func WithLocation(loc string) JobOption {
	return func(j *models.Job) { j.Location = loc }
}

// WithSalary sets the salary range.
func WithSalary(minimum, maximum int64) JobOption {
	return func(j *models.Job) {
		j.SalaryMin = &minimum
		j.SalaryMax = &maximum
	}
}

// WithDescription sets the job description.
func WithDescription(d string) JobOption {
	return func(j *models.Job) { j.Description = d }
}

// CreateJob inserts an active job for the company.
func CreateJob(t *testing.T, db *gorm.DB, companyID uint, title string, opts ...JobOption) *models.Job {
	t.Helper()
	j := &models.Job{
		CompanyID:    companyID,
		Title:        title,
		Description:  title + " description",
		Requirements: "Go experience",
		Location:     "Harare",
		JobType:      models.JobTypeFullTime,
		Status:       models.JobStatusActive,
	}
	for _, opt := range opts {
		opt(j)
	}
	require.NoError(t, db.Create(j).Error)
	return j
}

// CreateApplication inserts an application for the job seeker.
func CreateApplication(t *testing.T, db *gorm.DB, jobID uint, user *models.User, seeker *models.JobSeeker, appliedAt time.Time) *models.Application {
	t.Helper()
	a := &models.Application{
		JobID:     jobID,
		UserID:    user.ID,
		FirstName: "Tariro",
		Surname:   "Moyo",
		Email:     user.Email,
		CVFile:    "cv/test.pdf",
		Status:    models.ApplicationStatusPending,
		AppliedAt: appliedAt,
	}
	if seeker != nil {
		a.JobSeekerID = &seeker.ID
	}
	require.NoError(t, db.Create(a).Error)
	return a
}
