package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(func() (*gorm.DB, error) { return db, nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBlockAndUnblock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CreateUser(t, db, "bob", models.RoleUser)

	out, err := run(t, db, "--forum", testutil.ForumID, "block", "bob", "--reason", "spam")
	require.NoError(t, err)
	assert.Equal(t, "blocked bob\n", out)

	out, err = run(t, db, "--forum", testutil.ForumID, "block", "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob is already blocked\n", out)

	var block models.Block
	require.NoError(t, db.First(&block, "username = ?", "bob").Error)
	assert.Equal(t, "forumctl", block.BlockedBy)
	assert.Equal(t, "spam", block.Reason)

	out, err = run(t, db, "--forum", testutil.ForumID, "unblock", "bob")
	require.NoError(t, err)
	assert.Equal(t, "unblocked bob\n", out)

	out, err = run(t, db, "--forum", testutil.ForumID, "unblock", "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob was not blocked\n", out)
}

func TestForumFlagRequired(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := run(t, db, "reports")
	assert.EqualError(t, err, "--forum is required")
}

func TestActivityJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := testutil.NewClock()
	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	testutil.CreateTopic(t, db, alice, "First topic", 2, 0, clock.Now())

	out, err := run(t, db, "--forum", testutil.ForumID, "activity", "alice", "--stats")
	require.NoError(t, err)

	var got struct {
		Events []struct {
			Kind string `json:"kind"`
		} `json:"events"`
		Stats struct {
			Reputation int `json:"reputation"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Events, 1)
	assert.Equal(t, "topic_created", got.Events[0].Kind)
	assert.Equal(t, 2, got.Stats.Reputation)
}

func TestMigrate(t *testing.T) {
	db := testutil.SetupTestDB(t)

	out, err := run(t, db, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "migrated 10 tables\n", out)
}
