package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobboard/internal/authz"
	"jobboard/internal/featureflags"
	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/storage"
	"jobboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestCompanyOnboarding_CreateThenUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db), repository.NewJobRepository(db),
		storage.NewDiskStore(t.TempDir()), featureflags.NewManager(""), 0)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "onboard_hr", models.RoleEmployer)
	scope := authz.EmployerScope(u.ID, nil)

	own, err := svc.GetOwn(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, own)

	created, err := svc.SaveOwn(ctx, scope, CompanyInput{Name: "Acme", Industry: "Mining"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	updated, err := svc.SaveOwn(ctx, scope, CompanyInput{Name: "Acme Holdings", Location: "Gweru"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	detail, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", detail.Company.Name)
	assert.Equal(t, "Gweru", detail.Company.Location)

	_, err = svc.SaveOwn(ctx, scope, CompanyInput{Name: ""})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = svc.SaveOwn(ctx, authz.JobSeekerScope(9, nil), CompanyInput{Name: "Nope"})
	assert.True(t, models.IsCode(err, models.CodeForbidden))
}

func TestCompanyLogo_ConvertedToWebP(t *testing.T) {
	db := testutil.NewDB(t)
	store := storage.NewDiskStore(t.TempDir())
	companies := repository.NewCompanyRepository(db)
	svc := NewCompanyService(companies, repository.NewJobRepository(db), store, featureflags.NewManager(""), 1024*1024)
	ctx := context.Background()
	u, c := testutil.CreateEmployer(t, db, "logo_hr", "Logo Co")
	scope := authz.EmployerScope(u.ID, &c.ID)

	ref, err := svc.UploadLogo(ctx, scope, "logo.png", tinyPNG(t, 900, 300))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, storage.BucketCompanyLogos+"/"))
	assert.Equal(t, ".webp", filepath.Ext(ref))

	path, err := store.Path(ref)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	second, err := svc.UploadLogo(ctx, scope, "logo2.png", tinyPNG(t, 32, 32))
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "replaced logo should be removed")

	stored, err := companies.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, second, stored.Logo)
}

func TestCompanyLogo_KeepsFormatWhenWebPDisabled(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db), repository.NewJobRepository(db),
		storage.NewDiskStore(t.TempDir()), featureflags.NewManager("webp_images=off"), 0)
	u, c := testutil.CreateEmployer(t, db, "png_hr", "Png Co")

	ref, err := svc.UploadLogo(context.Background(), authz.EmployerScope(u.ID, &c.ID), "logo.PNG", tinyPNG(t, 16, 16))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(ref))

	_, err = svc.UploadLogo(context.Background(), authz.EmployerScope(u.ID, &c.ID), "logo.png", []byte("plain text"))
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = svc.UploadLogo(context.Background(), authz.EmployerScope(u.ID, &c.ID), "logo.svg", tinyPNG(t, 16, 16))
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestCompanyList_Filters(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db), repository.NewJobRepository(db),
		storage.NewDiskStore(t.TempDir()), featureflags.NewManager(""), 0)
	_, acme := testutil.CreateEmployer(t, db, "list_a", "Acme")
	testutil.CreateEmployer(t, db, "list_b", "Bolt")
	testutil.CreateJob(t, db, acme.ID, "One")

	res, err := svc.List(context.Background(), listing.CompanyFilter{Search: "acm"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(1), res.Items[0].ActiveJobs)
}
