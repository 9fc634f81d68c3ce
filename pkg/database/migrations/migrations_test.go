package migrations

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAppliesOnceOnSQLite(t *testing.T) {
	db, err := sqlx.Open("sqlite3", "file::memory:?cache=shared&_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	applied, err := Run(ctx, db, nil)
	require.NoError(t, err)
	assert.Equal(t, len(All()), applied)

	again, err := Run(ctx, db, nil)
	require.NoError(t, err)
	assert.Zero(t, again)

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Subset(t, tables, []string{"users", "events", "reminders", "user_profiles", "user_settings", "ai_interactions", "chat_messages"})
}

func TestRenderTimestampType(t *testing.T) {
	assert.Equal(t, "x TIMESTAMPTZ", render("x {{TIMESTAMP}}", "postgres"))
	assert.Equal(t, "x TIMESTAMP", render("x {{TIMESTAMP}}", "sqlite3"))
}

func TestVersionsAreUnique(t *testing.T) {
	seen := map[int]bool{}
	for _, m := range All() {
		assert.False(t, seen[m.Version], "duplicate version %d", m.Version)
		seen[m.Version] = true
	}
}
