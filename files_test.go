package account

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrationsFS(t *testing.T) {
	migrationsFS := GetMigrationsFS()

	entries, err := fs.ReadDir(migrationsFS, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var ups, downs int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs, "every up migration needs a down")

	content, err := fs.ReadFile(migrationsFS, "20240101000000_create_accounts.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS social_logins")
}
