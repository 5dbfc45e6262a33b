package service

import (
	"context"
	"testing"

	"jobboard/internal/authz"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSubmit_StoresThenNotifiesInbox(t *testing.T) {
	db := testutil.NewDB(t)
	notifier := &recordingNotifier{}
	svc := NewContactService(repository.NewContactRepository(db), notifier, "inbox@jobboard.test")
	ctx := context.Background()

	msg, err := svc.Submit(ctx, ContactInput{Name: "Chipo", Email: "chipo@example.com", Subject: "Hello", Message: "Do you list remote jobs?"})
	require.NoError(t, err)
	require.NotZero(t, msg.ID)

	sent := notifier.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "inbox@jobboard.test", sent[0].Recipient)
	assert.Equal(t, "[Contact] Hello", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "remote jobs")

	_, err = svc.Submit(ctx, ContactInput{Name: "Chipo", Email: "bad", Message: "x"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
	assert.Len(t, notifier.Messages(), 1)
}

func TestContactAdminPages(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewContactService(repository.NewContactRepository(db), nil, "")
	ctx := context.Background()

	msg, err := svc.Submit(ctx, ContactInput{Name: "Tendai", Email: "t@example.com", Message: "Hi"})
	require.NoError(t, err)

	_, err = svc.List(ctx, authz.EmployerScope(1, nil), false, 1)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	admin := authz.AdminScope(1)
	unread, err := svc.List(ctx, admin, true, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread.Total)

	require.NoError(t, svc.MarkRead(ctx, admin, msg.ID))
	unread, err = svc.List(ctx, admin, true, 1)
	require.NoError(t, err)
	assert.Zero(t, unread.Total)

	err = svc.MarkRead(ctx, admin, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
