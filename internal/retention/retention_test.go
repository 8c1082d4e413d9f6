package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatroom/pkg/config"
	"chatroom/pkg/models"
	"chatroom/pkg/store"
)

func seedLog(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	for _, m := range []models.Message{
		{From: "alice", To: models.Broadcast, Text: "joined", Type: models.TypeStatus},
		{From: "alice", To: models.Broadcast, Text: "hello", Type: models.TypePublic},
		{From: "alice", To: models.Broadcast, Text: "left", Type: models.TypeStatus},
	} {
		_, err := st.AppendMessage(m)
		require.NoError(t, err)
	}
	// let the appended keys age past a nanosecond-scale period
	time.Sleep(10 * time.Millisecond)
	return st
}

func TestRunOncePurgesOldStatusMessages(t *testing.T) {
	st := seedLog(t)
	cfg := config.RetentionConfig{Enabled: true, Period: config.Duration(time.Nanosecond)}

	n, err := RunOnce(st, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	msgs, err := st.ListMessages()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
}

func TestRunOnceDryRun(t *testing.T) {
	st := seedLog(t)
	cfg := config.RetentionConfig{Enabled: true, Period: config.Duration(time.Nanosecond), DryRun: true}

	n, err := RunOnce(st, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	msgs, err := st.ListMessages()
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}

func TestRunOnceKeepsRecentStatus(t *testing.T) {
	st := seedLog(t)
	cfg := config.RetentionConfig{Enabled: true, Period: config.Duration(time.Hour)}

	n, err := RunOnce(st, cfg)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunOnceBatched(t *testing.T) {
	st := seedLog(t)
	cfg := config.RetentionConfig{Enabled: true, Period: config.Duration(time.Nanosecond), BatchSize: 1}

	// batches repeat until the backlog is drained
	n, err := RunOnce(st, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	msgs, err := st.ListMessages()
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestStartValidation(t *testing.T) {
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	// disabled: no-op cancel, no error
	cancel, err := Start(context.Background(), st, config.RetentionConfig{})
	require.NoError(t, err)
	cancel()

	_, err = Start(context.Background(), st, config.RetentionConfig{Enabled: true, Cron: "bogus", Period: config.Duration(time.Hour)})
	assert.Error(t, err)

	_, err = Start(context.Background(), st, config.RetentionConfig{Enabled: true, Cron: "0 2 * * *"})
	assert.Error(t, err)

	cancel, err = Start(context.Background(), st, config.RetentionConfig{Enabled: true, Cron: "0 2 * * *", Period: config.Duration(time.Hour)})
	require.NoError(t, err)
	cancel()
}
