package models

import (
	"strings"
	"time"
)

// JobStatus is the job lifecycle state.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusActive   JobStatus = "active"
	JobStatusInactive JobStatus = "inactive"
	JobStatusFilled   JobStatus = "filled"
	JobStatusExpired  JobStatus = "expired"
)

// JobStatuses lists every valid job status.
var JobStatuses = []JobStatus{
	JobStatusPending, JobStatusActive, JobStatusInactive, JobStatusFilled, JobStatusExpired,
}

// JobType is the employment type of a job.
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
	JobTypeRemote     JobType = "remote"
)

// JobTypes lists every valid job type.
var JobTypes = []JobType{
	JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeTemporary, JobTypeRemote,
}

// Job is a vacancy posted by a company.
type Job struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CompanyID    uint       `gorm:"not null;index" json:"company_id"`
	Company      *Company   `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Requirements string     `gorm:"type:text" json:"requirements"`
	Location     string     `gorm:"size:150" json:"location"`
	JobType      JobType    `gorm:"type:varchar(20);index" json:"job_type"`
	CategoryID   *uint      `gorm:"index" json:"category_id"`
	Category     *Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	SalaryMin    *int64     `json:"salary_min"`
	SalaryMax    *int64     `json:"salary_max"`
	Deadline     *time.Time `gorm:"type:date" json:"deadline"`
	IsFeatured   bool       `gorm:"not null;default:false" json:"is_featured"`
	Status       JobStatus  `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ParseJobStatus normalizes raw into a JobStatus. ok is false when raw is
// outside the enum.
func ParseJobStatus(raw string) (JobStatus, bool) {
	s := JobStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, v := range JobStatuses {
		if v == s {
			return s, true
		}
	}
	return "", false
}

// ParseJobType normalizes raw into a JobType.
func ParseJobType(raw string) (JobType, bool) {
	t := JobType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case "fulltime", "full_time":
		t = JobTypeFullTime
	case "parttime", "part_time":
		t = JobTypePartTime
	}
	for _, v := range JobTypes {
		if v == t {
			return t, true
		}
	}
	return "", false
}
