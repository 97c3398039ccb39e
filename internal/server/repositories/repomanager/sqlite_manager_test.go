package repomanager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain path",
			in:   "vault.db",
			want: "file:vault.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		},
		{
			name: "file uri",
			in:   "file:vault.db",
			want: "file:vault.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		},
		{
			name: "existing query",
			in:   "file:vault.db?mode=rwc",
			want: "file:vault.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	defer db.Close()

	m := NewSQLiteRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background(), db))

	var n int
	err = db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM reset_tokens").Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)
}
