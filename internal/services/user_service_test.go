package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersDerivesBlockStatus(t *testing.T) {
	f := newForum(t)
	root := testutil.CreateUser(t, f.db, "root", models.RoleAdmin)
	alice := testutil.CreateUser(t, f.db, "alice", models.RoleUser)
	testutil.CreateUser(t, f.db, "bob", models.RoleUser)

	_, err := f.blocks.Block(testutil.ForumID, "bob", "root", "spam")
	require.NoError(t, err)

	_, _, err = f.users.ListUsers(testutil.ForumID, actorOf(alice), "", 10, 0)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	users, total, err := f.users.ListUsers(testutil.ForumID, actorOf(root), "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	blocked := map[string]bool{}
	for _, u := range users {
		blocked[u.Username] = u.IsBlocked
	}
	assert.Equal(t, map[string]bool{"root": false, "alice": false, "bob": true}, blocked)

	users, total, err = f.users.ListUsers(testutil.ForumID, actorOf(root), "ALI", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUpdateRole(t *testing.T) {
	f := newForum(t)
	root := testutil.CreateUser(t, f.db, "root", models.RoleAdmin)
	testutil.CreateUser(t, f.db, "alice", models.RoleUser)

	user, err := f.users.UpdateRole(testutil.ForumID, actorOf(root), "alice", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = f.users.UpdateRole(testutil.ForumID, actorOf(root), "alice", "owner")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.users.UpdateRole(testutil.ForumID, actorOf(root), "root", models.RoleUser)
	assert.ErrorAs(t, err, &verr)

	_, err = f.users.UpdateRole(testutil.ForumID, actorOf(root), "ghost", models.RoleUser)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboard(t *testing.T) {
	f := newForum(t)
	root := testutil.CreateUser(t, f.db, "root", models.RoleAdmin)
	alice := testutil.CreateUser(t, f.db, "alice", models.RoleUser)
	testutil.CreateUser(t, f.db, "bob", models.RoleUser)
	topic := testutil.CreateTopic(t, f.db, alice, "One", 0, 0, f.clock.Now())
	testutil.CreatePost(t, f.db, alice, topic, nil, "p", f.clock.Now())

	_, err := f.moderation.CreateReport(testutil.ForumID, actorOf(alice), &dto.CreateReportRequest{
		ReportedUsername: "bob",
		Reason:           models.ReasonSpam,
	})
	require.NoError(t, err)
	_, err = f.blocks.Block(testutil.ForumID, "bob", "root", "spam")
	require.NoError(t, err)

	_, err = f.users.Dashboard(testutil.ForumID, actorOf(alice))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	stats, err := f.users.Dashboard(testutil.ForumID, actorOf(root))
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{
		Users:          3,
		Topics:         1,
		Posts:          1,
		PendingReports: 1,
		TotalReports:   1,
		BlockedUsers:   1,
	}, stats)
}

func TestSessionState(t *testing.T) {
	f := newForum(t)
	alice := testutil.CreateUser(t, f.db, "alice", models.RoleUser)
	topic := testutil.CreateTopic(t, f.db, alice, "Open", 0, 0, f.clock.Now())
	other := testutil.CreateTopic(t, f.db, alice, "Other", 0, 0, f.clock.Now())
	post := testutil.CreatePost(t, f.db, alice, topic, nil, "p", f.clock.Now())

	state, err := f.state.Get(testutil.ForumID, actorOf(alice))
	require.NoError(t, err)
	assert.Empty(t, state.Section)
	assert.Nil(t, state.ActiveTopicID)

	_, err = f.state.Save(testutil.ForumID, actorOf(alice), &dto.SessionStateRequest{
		Section:       "discussions",
		ActiveTopicID: &topic.ID,
		ActivePostID:  &post.ID,
	})
	require.NoError(t, err)

	_, err = f.state.Save(testutil.ForumID, actorOf(alice), &dto.SessionStateRequest{
		Section:       "discussions",
		ActiveTopicID: &other.ID,
		ActivePostID:  &post.ID,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.state.Save(testutil.ForumID, actorOf(alice), &dto.SessionStateRequest{ActivePostID: &post.ID})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	state, err = f.state.Get(testutil.ForumID, actorOf(alice))
	require.NoError(t, err)
	assert.Equal(t, "discussions", state.Section)
	require.NotNil(t, state.ActiveTopicID)
	assert.Equal(t, topic.ID, *state.ActiveTopicID)

	_, err = f.state.Save(testutil.ForumID, actorOf(alice), &dto.SessionStateRequest{Section: "profile"})
	require.NoError(t, err)
	require.NoError(t, f.state.ClearThread(testutil.ForumID, actorOf(alice)))

	state, err = f.state.Get(testutil.ForumID, actorOf(alice))
	require.NoError(t, err)
	assert.Equal(t, "profile", state.Section)
	assert.Nil(t, state.ActiveTopicID)
	assert.Nil(t, state.ActivePostID)

	_, err = f.state.Get(testutil.ForumID, &Actor{ID: uuid.Nil})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
