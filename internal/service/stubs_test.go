package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/notifications"
)

// jobRepoStub is a stub for repository.JobRepository. Unset functions
// return zero values.
type jobRepoStub struct {
	createFn       func(context.Context, *models.Job) error
	getByIDFn      func(context.Context, uint) (*models.Job, error)
	updateFn       func(context.Context, *models.Job) error
	updateStatusFn func(context.Context, uint, *uint, models.JobStatus) (bool, error)
	deleteFn       func(context.Context, uint, *uint) (bool, error)
}

func (s *jobRepoStub) Create(ctx context.Context, job *models.Job) error {
	if s.createFn == nil {
		job.ID = 1
		return nil
	}
	return s.createFn(ctx, job)
}
func (s *jobRepoStub) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Job", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *jobRepoStub) Update(ctx context.Context, job *models.Job) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, job)
}
func (s *jobRepoStub) UpdateStatus(ctx context.Context, id uint, companyID *uint, status models.JobStatus) (bool, error) {
	if s.updateStatusFn == nil {
		return true, nil
	}
	return s.updateStatusFn(ctx, id, companyID, status)
}
func (s *jobRepoStub) SetFeatured(context.Context, uint, bool) error { return nil }
func (s *jobRepoStub) Delete(ctx context.Context, id uint, companyID *uint) (bool, error) {
	if s.deleteFn == nil {
		return true, nil
	}
	return s.deleteFn(ctx, id, companyID)
}
func (s *jobRepoStub) List(context.Context, listing.Query) (*listing.Result[models.Job], error) {
	return listing.NewResult[models.Job](nil, 0, 1), nil
}
func (s *jobRepoStub) ListActiveByCompany(context.Context, uint, int) ([]models.Job, error) {
	return nil, nil
}
func (s *jobRepoStub) ExpireOverdue(context.Context, time.Time) (int64, error) { return 0, nil }
func (s *jobRepoStub) CountByStatus(context.Context) (map[models.JobStatus]int64, error) {
	return map[models.JobStatus]int64{}, nil
}

// categoryRepoStub knows a fixed set of category ids.
type categoryRepoStub struct {
	known map[uint]bool
}

func (s *categoryRepoStub) List(context.Context) ([]models.Category, error) { return nil, nil }
func (s *categoryRepoStub) GetByID(_ context.Context, id uint) (*models.Category, error) {
	if s.known[id] {
		return &models.Category{ID: id, Name: "Engineering"}, nil
	}
	return nil, models.NewNotFoundError("Category", id)
}
func (s *categoryRepoStub) Create(context.Context, *models.Category) error { return nil }
func (s *categoryRepoStub) Count(context.Context) (int64, error)          { return int64(len(s.known)), nil }

// failingStore refuses every write.
type failingStore struct{}

func (failingStore) Save(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("disk full")
}
func (failingStore) Remove(string) error { return nil }

// recordingNotifier captures dispatched messages synchronously.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notifications.Message
}

func (n *recordingNotifier) Dispatch(_ context.Context, msg notifications.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) Messages() []notifications.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.Message(nil), n.msgs...)
}

// failingMailer always fails delivery.
type failingMailer struct{}

func (failingMailer) Deliver(context.Context, notifications.Message) error {
	return errors.New("smtp unavailable")
}

func uintPtr(v uint) *uint    { return &v }
func int64Ptr(v int64) *int64 { return &v }
