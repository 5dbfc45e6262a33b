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

func TestListJobs_OnlyActive(t *testing.T) {
	ts := newTestServer(t, nil)
	_, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	testutil.CreateJob(t, ts.db, company.ID, "Go Developer")
	testutil.CreateJob(t, ts.db, company.ID, "Go Intern", testutil.WithStatus(models.JobStatusPending))
	testutil.CreateJob(t, ts.db, company.ID, "Accountant", testutil.WithLocation("Mutare"))

	resp := ts.do(t, http.MethodGet, "/api/jobs?keyword=Go", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.EqualValues(t, 1, body["total"])

	resp = ts.do(t, http.MethodGet, "/api/jobs?location=mutare&page=abc", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode[map[string]any](t, resp)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["page"])
}

func TestGetJob_NonActiveHiddenFromPublic(t *testing.T) {
	ts := newTestServer(t, nil)
	employer, company := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	job := testutil.CreateJob(t, ts.db, company.ID, "Draft", testutil.WithStatus(models.JobStatusPending))
	path := fmt.Sprintf("/api/jobs/%d", job.ID)

	resp := ts.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, path, ts.token(t, employer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	details := decode[map[string]any](t, resp)
	assert.Equal(t, "jobseekers_only", details["apply"].(map[string]any)["reason"])
}

func TestCompanies(t *testing.T) {
	ts := newTestServer(t, nil)
	_, acme := testutil.CreateEmployer(t, ts.db, "acme_owner", "Acme")
	testutil.CreateEmployer(t, ts.db, "zeta_owner", "Zeta Mining")
	testutil.CreateJob(t, ts.db, acme.ID, "Designer")
	testutil.CreateJob(t, ts.db, acme.ID, "Old", testutil.WithStatus(models.JobStatusExpired))

	resp := ts.do(t, http.MethodGet, "/api/companies?search=zeta", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[map[string]any](t, resp)["total"])

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/companies/%d", acme.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[map[string]any](t, resp)
	assert.Len(t, detail["jobs"], 1)

	resp = ts.do(t, http.MethodGet, "/api/companies/0", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := ts.do(t, http.MethodPost, "/api/auth/register?type=employer", "", map[string]string{
		"username":     "new_boss",
		"email":        "boss@example.com",
		"password":     "Password123!",
		"company_name": "Boss Ltd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := decode[map[string]any](t, resp)["token"].(string)

	resp = ts.do(t, http.MethodGet, "/api/employer/company", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	company := decode[map[string]map[string]any](t, resp)["company"]
	assert.Equal(t, "Boss Ltd", company["name"])

	resp = ts.do(t, http.MethodPost, "/api/auth/register?type=admin", "", map[string]string{
		"username": "wannabe",
		"email":    "wannabe@example.com",
		"password": "Password123!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/auth/register?type=jobseeker", "", map[string]string{
		"username": "other",
		"email":    "boss@example.com",
		"password": "Password123!",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "boss@example.com", "password": "Password123!"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "new_boss", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCategories(t *testing.T) {
	ts := newTestServer(t, nil)
	admin := testutil.CreateUser(t, ts.db, "root_admin", models.RoleAdmin)

	resp := ts.do(t, http.MethodPost, "/api/admin/categories", ts.token(t, admin), map[string]string{"name": "Mining", "icon": "pickaxe"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	categories := decode[[]map[string]any](t, resp)
	require.Len(t, categories, 1)
	assert.Equal(t, "Mining", categories[0]["name"])
}
