//go:build integration
// +build integration

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmehdipour/user-send/internal/config"
	"github.com/jmehdipour/user-send/internal/db"
	"github.com/jmehdipour/user-send/internal/model"
	"github.com/jmehdipour/user-send/internal/service/usersend"
	"github.com/jmehdipour/user-send/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRun_PublishesDemoUsersIntegration(t *testing.T) {
	url := testutil.StartRedis(t)

	cfg, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)
	cfg.EventBusConnection = url
	cfg.TopicName = "users"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, zaptest.NewLogger(t)))

	wantContent, err := model.MarshalUsers(model.DemoUsers())
	require.NoError(t, err)
	assert.Equal(t, usersend.ConfirmationPrefix+wantContent+"\n", out.String())

	ctx := context.Background()
	rdb, err := db.NewRedisClient(ctx, db.RedisOpts{URL: url})
	require.NoError(t, err)
	defer rdb.Close()

	entries, err := rdb.XRange(ctx, "users", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	env, err := model.DecodeEnvelope([]byte(entries[0].Values["body"].(string)))
	require.NoError(t, err)
	assert.Equal(t, model.TypeUserData, env.Type)
	assert.Equal(t, wantContent, env.Content)
	assert.Equal(t, env.ID, entries[0].Values["id"])

	users, err := model.UnmarshalUsers(env.Content)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Carlos Flores", users[0].Name)
	assert.True(t, strings.HasPrefix(out.String(), "Mensaje enviado: "))
}

func TestMigrate_CreatesOutboxTableIntegration(t *testing.T) {
	conn, dsn := testutil.StartMySQL(t)

	dir := t.TempDir()
	settings := `{"EventBusConnection": "` + conn + `", "TopicName": "users"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(settings), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"migrate", "--base-dir", dir, "--migrations", filepath.Join(testutil.ProjectRoot(), "migrations")})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	// the container already ran the script; IF NOT EXISTS keeps it idempotent
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Migration complete")

	dbx, err := db.NewMySQLConnection(context.Background(), dsn, db.MySQLOpts{})
	require.NoError(t, err)
	defer dbx.Close()

	var n int
	require.NoError(t, dbx.Get(&n, `SELECT COUNT(*) FROM outbox`))
	assert.Zero(t, n)
}
