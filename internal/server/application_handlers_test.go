package server

import (
	"fmt"
	"net/http"
	"testing"

	"jobboard/internal/models"
	"jobboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdf = []byte("%PDF-1.4 test cv")

func applicantFields() map[string]string {
	return map[string]string{
		"first_name":   "Tariro",
		"surname":      "Moyo",
		"email":        "tariro@example.com",
		"phone":        "+263 77 000 0000",
		"cover_letter": "I would love to join.",
	}
}

func TestJobLifecycle_PostReviewApply(t *testing.T) {
	ts := newTestServer(t, nil)
	employer, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	seeker, _ := testutil.CreateJobSeeker(t, ts.db, "tariro")
	employerToken := ts.token(t, employer)
	seekerToken := ts.token(t, seeker)

	resp := ts.do(t, http.MethodPost, "/api/employer/post-job", employerToken, map[string]any{
		"title":        "Go Developer",
		"description":  "Build APIs",
		"requirements": "3 years of Go",
		"location":     "Harare",
		"job_type":     "full_time",
		"salary_min":   1000,
		"salary_max":   2000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	job := decode[models.Job](t, resp)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, company.ID, job.CompanyID)
	assert.False(t, job.IsFeatured)

	// Pending jobs do not accept applications.
	resp = ts.postMultipart(t, fmt.Sprintf("/api/jobs/%d/apply", job.ID), seekerToken, applicantFields(), "cv", "cv.pdf", pdf)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/employer/jobs/%d/status", job.ID), employerToken, map[string]string{"status": "active"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.postMultipart(t, fmt.Sprintf("/api/jobs/%d/apply", job.ID), seekerToken, applicantFields(), "cv", "cv.pdf", pdf)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	app := decode[models.Application](t, resp)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.NotEmpty(t, app.CVFile)

	resp = ts.postMultipart(t, fmt.Sprintf("/api/jobs/%d/apply", job.ID), seekerToken, applicantFields(), "cv", "cv.pdf", pdf)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeAlreadyApplied, body.Code)

	resp = ts.do(t, http.MethodGet, "/api/employer/applications", employerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[map[string]any](t, resp)
	assert.EqualValues(t, 1, list["total"])

	resp = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/employer/applications/%d/status", app.ID), employerToken, map[string]string{"status": "shortlisted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Application
	require.NoError(t, ts.db.First(&stored, app.ID).Error)
	assert.Equal(t, models.ApplicationStatusShortlisted, stored.Status)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d", job.ID), seekerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	details := decode[map[string]any](t, resp)
	apply := details["apply"].(map[string]any)
	assert.Equal(t, false, apply["can_apply"])
	assert.Equal(t, true, apply["has_applied"])
	assert.Equal(t, "already_applied", apply["reason"])
}

func TestPostJob_WithoutCompanyIsProfileIncomplete(t *testing.T) {
	ts := newTestServer(t, nil)
	employer := testutil.CreateUser(t, ts.db, "fresh_boss", models.RoleEmployer)

	resp := ts.do(t, http.MethodPost, "/api/employer/post-job", ts.token(t, employer), map[string]any{
		"title":        "Anything",
		"description":  "Anything",
		"requirements": "Anything",
		"location":     "Anywhere",
		"job_type":     "full_time",
	})
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeProfileIncomplete, body.Code)
}

func TestApply_Validation(t *testing.T) {
	ts := newTestServer(t, nil)
	_, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	job := testutil.CreateJob(t, ts.db, company.ID, "Designer")
	seeker, _ := testutil.CreateJobSeeker(t, ts.db, "tariro")
	token := ts.token(t, seeker)
	path := fmt.Sprintf("/api/jobs/%d/apply", job.ID)

	t.Run("missing cv", func(t *testing.T) {
		resp := ts.postMultipart(t, path, token, applicantFields(), "", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("bad extension", func(t *testing.T) {
		resp := ts.postMultipart(t, path, token, applicantFields(), "cv", "cv.exe", pdf)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("missing surname", func(t *testing.T) {
		fields := applicantFields()
		delete(fields, "surname")
		resp := ts.postMultipart(t, path, token, fields, "cv", "cv.pdf", pdf)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("anonymous", func(t *testing.T) {
		resp := ts.postMultipart(t, path, "", applicantFields(), "cv", "cv.pdf", pdf)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var count int64
	require.NoError(t, ts.db.Model(&models.Application{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApply_EmployerForbidden(t *testing.T) {
	ts := newTestServer(t, nil)
	employer, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	job := testutil.CreateJob(t, ts.db, company.ID, "Designer")

	resp := ts.postMultipart(t, fmt.Sprintf("/api/jobs/%d/apply", job.ID), ts.token(t, employer), applicantFields(), "cv", "cv.pdf", pdf)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSetApplicationStatus_OtherCompanyForbidden(t *testing.T) {
	ts := newTestServer(t, nil)
	_, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	rival, _ := testutil.CreateEmployer(t, ts.db, "rival_owner", "Rival")
	job := testutil.CreateJob(t, ts.db, company.ID, "Designer")
	user, seeker := testutil.CreateJobSeeker(t, ts.db, "tariro")
	app := testutil.CreateApplication(t, ts.db, job.ID, user, seeker, job.CreatedAt)

	resp := ts.do(t, http.MethodPatch, fmt.Sprintf("/api/employer/applications/%d/status", app.ID), ts.token(t, rival), map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var stored models.Application
	require.NoError(t, ts.db.First(&stored, app.ID).Error)
	assert.Equal(t, models.ApplicationStatusPending, stored.Status)
}

func TestEmployerApplications_LegacyActionForm(t *testing.T) {
	ts := newTestServer(t, nil)
	employer, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	job := testutil.CreateJob(t, ts.db, company.ID, "Designer")
	user, seeker := testutil.CreateJobSeeker(t, ts.db, "tariro")
	app := testutil.CreateApplication(t, ts.db, job.ID, user, seeker, job.CreatedAt)
	token := ts.token(t, employer)

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/api/employer/applications?action=set_status&id=%d&to=reviewed", app.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Application
	require.NoError(t, ts.db.First(&stored, app.ID).Error)
	assert.Equal(t, models.ApplicationStatusReviewed, stored.Status)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/employer/applications?action=set_status&id=%d&to=interview", app.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestManageJobs_LegacyActionForm(t *testing.T) {
	ts := newTestServer(t, nil)
	employer, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	job := testutil.CreateJob(t, ts.db, company.ID, "Designer")

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/api/employer/manage-jobs?action=set_status&job_id=%d&to=filled", job.ID), ts.token(t, employer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Job
	require.NoError(t, ts.db.First(&stored, job.ID).Error)
	assert.Equal(t, models.JobStatusFilled, stored.Status)
}

func TestLegacyJobDetails(t *testing.T) {
	ts := newTestServer(t, nil)
	_, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	job := testutil.CreateJob(t, ts.db, company.ID, "Designer")

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/api/job-details?id=%d", job.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	details := decode[map[string]any](t, resp)
	assert.Equal(t, "login_required", details["apply"].(map[string]any)["reason"])

	resp = ts.do(t, http.MethodGet, "/api/job-details?id=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/job-details?id=9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLegacyApply(t *testing.T) {
	ts := newTestServer(t, nil)
	_, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	job := testutil.CreateJob(t, ts.db, company.ID, "Designer")
	seeker, _ := testutil.CreateJobSeeker(t, ts.db, "tariro")

	fields := applicantFields()
	fields["apply_job"] = "1"
	resp := ts.postMultipart(t, fmt.Sprintf("/api/job-details?id=%d", job.ID), ts.token(t, seeker), fields, "cv", "resume.docx", pdf)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestMyApplications_OnlyOwn(t *testing.T) {
	ts := newTestServer(t, nil)
	_, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	job := testutil.CreateJob(t, ts.db, company.ID, "Designer")
	mine, mineProfile := testutil.CreateJobSeeker(t, ts.db, "mine")
	other, otherProfile := testutil.CreateJobSeeker(t, ts.db, "other")
	testutil.CreateApplication(t, ts.db, job.ID, mine, mineProfile, job.CreatedAt)
	testutil.CreateApplication(t, ts.db, job.ID, other, otherProfile, job.CreatedAt)

	resp := ts.do(t, http.MethodGet, "/api/jobseeker/applications", ts.token(t, mine), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[map[string]any](t, resp)
	assert.EqualValues(t, 1, list["total"])
}
