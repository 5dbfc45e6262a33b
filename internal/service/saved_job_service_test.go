package service

import (
	"context"
	"testing"

	"jobboard/internal/authz"
	"jobboard/internal/featureflags"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedJobs(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewSavedJobService(repository.NewSavedJobRepository(db), repository.NewJobRepository(db), featureflags.NewManager(""))
	ctx := context.Background()

	_, company := testutil.CreateEmployer(t, db, "saved_hr", "Saved Co")
	job := testutil.CreateJob(t, db, company.ID, "Bookmarked")
	pending := testutil.CreateJob(t, db, company.ID, "Hidden", testutil.WithStatus(models.JobStatusPending))
	u, profile := testutil.CreateJobSeeker(t, db, "saver")
	scope := authz.JobSeekerScope(u.ID, &profile.ID)

	require.NoError(t, svc.Save(ctx, scope, job.ID))
	require.NoError(t, svc.Save(ctx, scope, job.ID))

	err := svc.Save(ctx, scope, pending.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	saved, err := svc.IsSaved(ctx, scope, job.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	res, err := svc.List(ctx, scope, 1)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.NotNil(t, res.Items[0].Job)
	assert.Equal(t, "Bookmarked", res.Items[0].Job.Title)

	require.NoError(t, svc.Remove(ctx, scope, job.ID))
	err = svc.Remove(ctx, scope, job.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	saved, err = svc.IsSaved(ctx, authz.Anonymous(), job.ID)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSavedJobs_Gates(t *testing.T) {
	db := testutil.NewDB(t)
	jobs := repository.NewJobRepository(db)
	saved := repository.NewSavedJobRepository(db)
	ctx := context.Background()

	svc := NewSavedJobService(saved, jobs, featureflags.NewManager(""))
	err := svc.Save(ctx, authz.EmployerScope(1, uintPtr(1)), 1)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	err = svc.Save(ctx, authz.JobSeekerScope(1, nil), 1)
	assert.True(t, models.IsCode(err, models.CodeProfileIncomplete))

	disabled := NewSavedJobService(saved, jobs, featureflags.NewManager("saved_jobs=off"))
	_, err = disabled.List(ctx, authz.JobSeekerScope(1, uintPtr(1)), 1)
	assert.True(t, models.IsCode(err, models.CodeForbidden))
}
