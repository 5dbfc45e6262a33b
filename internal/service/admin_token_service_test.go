package service

import (
	"context"
	"testing"
	"time"

	"jobboard/internal/models"
	"jobboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminInput(name string) RegisterInput {
	return RegisterInput{Username: name, Email: name + "@example.com", Password: "Sup3r$ecretPass"}
}

func TestAdminToken_IssueStoresOnlyHash(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAdminTokenService(db, 24*time.Hour)

	issued, err := svc.Issue(context.Background(), "ops", 0, nil)
	require.NoError(t, err)
	assert.Len(t, issued.Token, 43)
	assert.Equal(t, HashAdminToken(issued.Token), issued.Record.TokenHash)
	assert.NotContains(t, issued.Record.TokenHash, issued.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), issued.Record.ExpiresAt, time.Minute)

	var stored models.AdminInviteToken
	require.NoError(t, db.First(&stored, issued.Record.ID).Error)
	assert.Equal(t, issued.Record.TokenHash, stored.TokenHash)
}

func TestRegisterAdmin_SingleUse(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAdminTokenService(db, time.Hour)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "first admin", 0, nil)
	require.NoError(t, err)

	admin, err := svc.RegisterAdmin(ctx, issued.Token, adminInput("first_admin"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = svc.RegisterAdmin(ctx, issued.Token, adminInput("second_admin"))
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error)
	assert.Equal(t, int64(1), admins)
}

func TestRegisterAdmin_RejectsUnusableTokens(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAdminTokenService(db, time.Hour)
	ctx := context.Background()

	_, err := svc.RegisterAdmin(ctx, "", adminInput("blank_token"))
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	_, err = svc.RegisterAdmin(ctx, "made-up-token", adminInput("unknown_token"))
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	revoked, err := svc.Issue(ctx, "revoked", 0, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, revoked.Record.ID))
	_, err = svc.RegisterAdmin(ctx, revoked.Token, adminInput("revoked_token"))
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	expired, err := svc.Issue(ctx, "expired", time.Minute, nil)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.RegisterAdmin(ctx, expired.Token, adminInput("expired_token"))
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestRegisterAdmin_ValidationKeepsToken(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAdminTokenService(db, time.Hour)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "", 0, nil)
	require.NoError(t, err)

	bad := adminInput("weak_admin")
	bad.Password = "weak"
	_, err = svc.RegisterAdmin(ctx, issued.Token, bad)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = svc.RegisterAdmin(ctx, issued.Token, adminInput("strong_admin"))
	require.NoError(t, err)

	tokens, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.NotNil(t, tokens[0].UsedAt)
}
