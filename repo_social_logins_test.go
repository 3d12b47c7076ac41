package account

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialLoginsCreateAndFind(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewSocialLoginsRepository(db)
	ctx := context.Background()

	user := insertUser(t, db, &User{Email: "social@example.com"})

	link, err := repo.Create(ctx, &SocialLogin{
		UserID:         user.ID,
		Provider:       "github",
		ProviderUserID: "gh-123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, link.ID)
	require.NotNil(t, link.CreatedAt)

	got, err := repo.FindByProviderID(ctx, "github", "gh-123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)

	got, err = repo.FindByUserAndProvider(ctx, user.ID, "github")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "gh-123", got.ProviderUserID)
}

func TestSocialLoginsLookupsReturnNilWhenMissing(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewSocialLoginsRepository(db)
	ctx := context.Background()

	got, err := repo.FindByProviderID(ctx, "github", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindByUserAndProvider(ctx, uuid.New(), "github")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSocialLoginsListByUser(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewSocialLoginsRepository(db)
	ctx := context.Background()

	user := insertUser(t, db, &User{Email: "multi@example.com"})
	other := insertUser(t, db, &User{Email: "other@example.com"})

	_, err := repo.Create(ctx, &SocialLogin{UserID: user.ID, Provider: "github", ProviderUserID: "gh-1"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &SocialLogin{UserID: user.ID, Provider: "google", ProviderUserID: "goo-1"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &SocialLogin{UserID: other.ID, Provider: "github", ProviderUserID: "gh-2"})
	require.NoError(t, err)

	links, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)

	providers := []string{links[0].Provider, links[1].Provider}
	assert.ElementsMatch(t, []string{"github", "google"}, providers)
}

func TestSocialLoginsUniquePerProvider(t *testing.T) {
	db := setupAccountDB(t)
	repo := NewSocialLoginsRepository(db)
	ctx := context.Background()

	user := insertUser(t, db, &User{Email: "unique@example.com"})

	_, err := repo.Create(ctx, &SocialLogin{UserID: user.ID, Provider: "github", ProviderUserID: "gh-1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &SocialLogin{UserID: user.ID, Provider: "github", ProviderUserID: "gh-other"})
	assert.Error(t, err, "one link per user and provider")
}
