package services

import (
	"errors"
	"testing"

	"foodshare_backend/internal/events"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications_ListAndRead(t *testing.T) {
	f := newFixture(t)
	user := f.account(t, "u@example.com", models.UserRoleDonor)
	other := f.account(t, "o@example.com", models.UserRoleDonor)
	notes := f.svc.NotificationService

	first, err := notes.Notify(f.ctx, user.IdentityID, models.NotificationAnnouncement, "One", "first", nil)
	require.NoError(t, err)
	_, err = notes.Notify(f.ctx, user.IdentityID, models.NotificationAnnouncement, "Two", "second", map[string]interface{}{"k": "v"})
	require.NoError(t, err)
	_, err = notes.Notify(f.ctx, other.IdentityID, models.NotificationAnnouncement, "Else", "not yours", nil)
	require.NoError(t, err)

	list, err := notes.List(f.ctx, user, false, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, "Two", list.Notifications[0].Title, "newest first")
	assert.JSONEq(t, `{"k":"v"}`, string(list.Notifications[0].Data))
	assert.Nil(t, list.Notifications[1].Data)

	count, err := notes.UnreadCount(f.ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, notes.MarkAsRead(f.ctx, user, first.ID))

	unread, err := notes.List(f.ctx, user, true, 1, 20)
	require.NoError(t, err)
	require.Len(t, unread.Notifications, 1)
	assert.Equal(t, "Two", unread.Notifications[0].Title)

	// Someone else's notification looks missing.
	err = notes.MarkAsRead(f.ctx, other, first.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	assert.Contains(t, f.pub.Types(), events.NotificationRead)
}

func TestMarkAllAsRead_PartialFailure(t *testing.T) {
	f := newFixture(t)
	user := f.account(t, "u@example.com", models.UserRoleDonor)
	notes := f.svc.NotificationService

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := notes.Notify(f.ctx, user.IdentityID, models.NotificationAnnouncement, "t", "m", nil)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	f.store.FailNotificationIDs[ids[1]] = errors.New("write timeout")

	result, err := notes.MarkAllAsRead(f.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Marked)
	assert.Equal(t, []string{ids[1]}, result.Failed)
	assert.True(t, result.Partial())

	count, err := notes.UnreadCount(f.ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	delete(f.store.FailNotificationIDs, ids[1])
	result, err = notes.MarkAllAsRead(f.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Marked)
	assert.Empty(t, result.Failed)
	assert.False(t, result.Partial())
}

func TestAnnounce(t *testing.T) {
	f := newFixture(t)
	admin := f.account(t, "root@example.com", models.UserRoleAdmin)
	user := f.account(t, "u@example.com", models.UserRoleNGO)
	req := &dto.AnnouncementRequest{Title: " Heads up ", Message: "Pickup hours changed"}

	_, err := f.svc.NotificationService.Announce(f.ctx, user, admin.IdentityID, req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = f.svc.NotificationService.Announce(f.ctx, admin, "missing", req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	n, err := f.svc.NotificationService.Announce(f.ctx, admin, user.IdentityID, req)
	require.NoError(t, err)
	assert.Equal(t, "Heads up", n.Title)
	assert.Equal(t, string(models.NotificationAnnouncement), n.Type)
	assert.False(t, n.IsRead)
}
