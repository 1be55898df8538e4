package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

func testBlog(externalID, name string) model.Blog {
	now := time.Now().UTC().Truncate(time.Second)
	return model.Blog{
		ExternalID:  externalID,
		PrincipalID: "admin-1",
		Name:        name,
		Description: "a blog",
		URL:         "https://example.com",
		Status:      model.BlogStatusLive,
		PostCount:   10,
		PageCount:   2,
		Published:   now,
		Updated:     now,
	}
}

func TestBlogRepo_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBlogRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testBlog("b1", "My Blog")))

	got, err := repo.Get(ctx, "admin-1", "b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "My Blog", got.Name)
	assert.Equal(t, model.BlogStatusLive, got.Status)
	assert.Equal(t, 10, got.PostCount)
	assert.False(t, got.LastSynced.IsZero())
}

func TestBlogRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBlogRepo(db)

	got, err := repo.Get(context.Background(), "admin-1", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBlogRepo_UpsertOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBlogRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testBlog("b1", "Old Name")))

	updated := testBlog("b1", "New Name")
	updated.PostCount = 11
	require.NoError(t, repo.Upsert(ctx, updated))

	blogs, err := repo.ListByPrincipal(ctx, "admin-1")
	require.NoError(t, err)
	require.Len(t, blogs, 1)
	assert.Equal(t, "New Name", blogs[0].Name)
	assert.Equal(t, 11, blogs[0].PostCount)
}

func TestBlogRepo_ListByPrincipalOrderedByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBlogRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testBlog("b2", "Zebra")))
	require.NoError(t, repo.Upsert(ctx, testBlog("b1", "Alpha")))

	other := testBlog("b3", "Other Principal")
	other.PrincipalID = "admin-2"
	require.NoError(t, repo.Upsert(ctx, other))

	blogs, err := repo.ListByPrincipal(ctx, "admin-1")
	require.NoError(t, err)
	require.Len(t, blogs, 2)
	assert.Equal(t, "Alpha", blogs[0].Name)
	assert.Equal(t, "Zebra", blogs[1].Name)
}
