package database

import "jobboard/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate on databases that enforce foreign keys.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Company{},
		&models.Category{},
		&models.Job{},
		&models.JobSeeker{},
		&models.Education{},
		&models.Experience{},
		&models.Application{},
		&models.SavedJob{},
		&models.ContactMessage{},
		&models.AdminInviteToken{},
	}
}
