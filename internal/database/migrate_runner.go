package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"jobboard/internal/middleware"

	"gorm.io/gorm"
)

// migrationLockKey serializes schema changes across replicas booting at once.
const migrationLockKey int64 = 0x6a6f62626f617264

// MigrationLog is one applied migration as recorded in migration_logs.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	Checksum  string    `gorm:"size:64"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// MigrationStore records which migrations ran and runs their scripts.
type MigrationStore interface {
	Applied(ctx context.Context) ([]MigrationLog, error)
	Apply(ctx context.Context, m Migration) error
	Revert(ctx context.Context, m Migration) error
}

type migrationStore struct {
	db *gorm.DB
}

// NewMigrationStore returns the gorm-backed MigrationStore.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

func (s *migrationStore) Applied(ctx context.Context) ([]MigrationLog, error) {
	var logs []MigrationLog
	if err := s.db.WithContext(ctx).Order("version ASC").Find(&logs).Error; err != nil {
		if isMissingTableError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migration_logs: %w", err)
	}
	return logs, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// lock takes a transaction-scoped advisory lock on postgres. Other dialects
// run single-process in this project and need none.
func lock(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", migrationLockKey).Error
}

// Apply runs the up script and records it in one transaction. A version
// recorded by a concurrent runner while we waited on the lock is skipped.
func (s *migrationStore) Apply(ctx context.Context, m Migration) error {
	skipped := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lock(tx); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}

		var n int64
		if err := tx.Model(&MigrationLog{}).Where("version = ?", m.Version).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			skipped = true
			return nil
		}

		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.String(), err)
		}
		return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name, Checksum: m.Checksum}).Error
	})
	if err != nil {
		return err
	}

	if skipped {
		middleware.Logger.Info("Migration applied by another runner", slog.Int("version", m.Version))
		return nil
	}
	middleware.Logger.Info("Migration applied", slog.Int("version", m.Version), slog.String("name", m.Name))
	return nil
}

// Revert runs the down script and drops the log row in one transaction.
func (s *migrationStore) Revert(ctx context.Context, m Migration) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lock(tx); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("failed to run rollback SQL for migration %s: %w", m.String(), err)
		}
		return tx.Where("version = ?", m.Version).Delete(&MigrationLog{}).Error
	})
	if err != nil {
		return err
	}
	middleware.Logger.Info("Migration rolled back", slog.Int("version", m.Version), slog.String("name", m.Name))
	return nil
}

const ensureMigrationLogTableSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	checksum VARCHAR(64) NOT NULL DEFAULT '',
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// RunMigrations ensures the log table exists, then applies every pending
// migration in version order.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(ensureMigrationLogTableSQL).Error; err != nil {
		return fmt.Errorf("failed to ensure migration logs table: %w", err)
	}
	return applyPending(ctx, NewMigrationStore(db), migrations)
}

func applyPending(ctx context.Context, store MigrationStore, registered []Migration) error {
	logs, err := store.Applied(ctx)
	if err != nil {
		return err
	}
	if err := checkHistory(logs, registered); err != nil {
		return err
	}

	pending := pendingMigrations(logs, registered)
	if len(pending) == 0 {
		middleware.Logger.Debug("Schema up to date", slog.Int("applied", len(logs)))
		return nil
	}
	for _, m := range pending {
		middleware.Logger.Info("Applying migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		if err := store.Apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// ErrMigrationHistory reports a migration_logs table the embedded scripts
// cannot explain.
var ErrMigrationHistory = errors.New("migration history mismatch")

// checkHistory refuses to run when the database knows versions the binary
// does not, or when an applied script was edited afterwards. Rows without a
// checksum predate checksum tracking and are trusted.
func checkHistory(logs []MigrationLog, registered []Migration) error {
	byVersion := make(map[int]Migration, len(registered))
	for _, m := range registered {
		byVersion[m.Version] = m
	}

	var unknown, drifted []string
	for _, l := range logs {
		m, ok := byVersion[l.Version]
		switch {
		case !ok:
			unknown = append(unknown, fmt.Sprintf("%06d", l.Version))
		case l.Checksum != "" && l.Checksum != m.Checksum:
			drifted = append(drifted, m.String())
		}
	}
	if len(unknown) == 0 && len(drifted) == 0 {
		return nil
	}

	sort.Strings(unknown)
	sort.Strings(drifted)
	var parts []string
	if len(unknown) > 0 {
		parts = append(parts, "unknown versions "+strings.Join(unknown, ", "))
	}
	if len(drifted) > 0 {
		parts = append(parts, "edited after apply "+strings.Join(drifted, ", "))
	}
	return fmt.Errorf("%w: %s", ErrMigrationHistory, strings.Join(parts, "; "))
}

func pendingMigrations(logs []MigrationLog, registered []Migration) []Migration {
	done := make(map[int]bool, len(logs))
	for _, l := range logs {
		done[l.Version] = true
	}
	var pending []Migration
	for _, m := range registered {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending
}

// RollbackMigration reverts one applied migration by version number.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	store := NewMigrationStore(db)
	logs, err := store.Applied(ctx)
	if err != nil {
		return err
	}
	applied := false
	for _, l := range logs {
		if l.Version == version {
			applied = true
			break
		}
	}
	if !applied {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Int("version", version), slog.String("name", m.Name))
	return store.Revert(ctx, *m)
}
