package account

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    user_role TEXT NOT NULL DEFAULT 'member',
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT,
    confirmation_token TEXT,
    is_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
    is_super_admin BOOLEAN NOT NULL DEFAULT FALSE,
    locale TEXT,
    timezone TEXT,
    last_access_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`

	sqliteCreateSocialLogins = `CREATE TABLE social_logins (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    provider TEXT NOT NULL,
    provider_user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
    CONSTRAINT uq_social_logins_provider_id UNIQUE (provider, provider_user_id),
    CONSTRAINT uq_social_logins_user_provider UNIQUE (user_id, provider)
);`
)

func setupAccountDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	_, err = bunDB.Exec(sqliteCreateUsers)
	require.NoError(t, err)
	_, err = bunDB.Exec(sqliteCreateSocialLogins)
	require.NoError(t, err)

	return bunDB
}

func insertUser(t *testing.T, db *bun.DB, u *User) *User {
	t.Helper()

	prepareUserDefaults(u)
	_, err := db.Exec(
		"INSERT INTO users (id, user_role, name, email, password_hash, confirmation_token, is_confirmed, is_super_admin) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID.String(), u.Role, u.Name, u.Email, u.PasswordHash, u.ConfirmationToken, u.Confirmed, u.SuperAdmin,
	)
	require.NoError(t, err)
	return u
}

func TestUsersRegisterAppliesDefaults(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewUsersRepository(db)
	ctx := context.Background()

	user, err := repo.Register(ctx, &User{
		Name:  "Reg Ular",
		Email: "reg@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, RoleMember, user.Role)

	got, err := repo.GetByEmail(ctx, "reg@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Reg Ular", got.Name)
}

func TestUsersGetByEmailNotFound(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewUsersRepository(db)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersEmailTaken(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewUsersRepository(db)
	ctx := context.Background()

	owner := insertUser(t, db, &User{Email: "claimed@example.com"})

	taken, err := repo.EmailTaken(ctx, "claimed@example.com", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	// the owner keeping their own address is not a conflict
	taken, err = repo.EmailTaken(ctx, "claimed@example.com", owner.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.EmailTaken(ctx, "free@example.com", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUsersSavePersistsChanges(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewUsersRepository(db)
	ctx := context.Background()

	insertUser(t, db, &User{Email: "save@example.com", Name: "Before"})

	user, err := repo.GetByEmail(ctx, "save@example.com")
	require.NoError(t, err)

	user.Name = "After"
	user.ConfirmationToken = "fresh-token"
	user.Confirmed = true
	_, err = repo.Save(ctx, user)
	require.NoError(t, err)

	got, err := repo.GetByEmail(ctx, "save@example.com")
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, "fresh-token", got.ConfirmationToken)
	assert.True(t, got.Confirmed)
}

func TestUsersTrackLastAccess(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewUsersRepository(db)
	ctx := context.Background()

	user := insertUser(t, db, &User{Email: "track@example.com"})
	at := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.TrackLastAccess(ctx, user, at))

	got, err := repo.GetByEmail(ctx, "track@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.LastAccessAt)
	assert.Equal(t, at.Unix(), got.LastAccessAt.Unix())
}

func TestUsersDeleteAccountSoftDeletes(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewUsersRepository(db)
	ctx := context.Background()

	user := insertUser(t, db, &User{Email: "gone@example.com"})

	require.NoError(t, repo.DeleteAccount(ctx, user))

	_, err := repo.GetByEmail(ctx, "gone@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	// row retained with deleted_at stamped
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM users WHERE id = ? AND deleted_at IS NOT NULL", user.ID.String()).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUsersDeleteAccountMissingUser(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewUsersRepository(db)

	err := repo.DeleteAccount(context.Background(), &User{ID: uuid.New()})
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersDeleteAccountTwice(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewUsersRepository(db)
	ctx := context.Background()

	user := insertUser(t, db, &User{Email: "twice@example.com"})

	require.NoError(t, repo.DeleteAccount(ctx, user))

	err := repo.DeleteAccount(ctx, user)
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}
