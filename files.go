package account

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrations embed.FS

// GetMigrationsFS returns the SQL migrations that create the account
// tables, rooted at the migrations directory.
func GetMigrationsFS() fs.FS {
	sub, err := fs.Sub(migrations, "data/sql/migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
