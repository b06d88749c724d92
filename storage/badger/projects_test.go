package badger

import (
	"context"
	"testing"

	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_Lifecycle(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	project := &core.ContextProject{
		Id:       "webapp",
		Name:     "Web Application",
		IsActive: true,
	}

	added, err := repo.AddProject(ctx, project)
	require.NoError(t, err)
	assert.False(t, added.CreatedAt.IsZero())

	t.Run("duplicate id is rejected", func(t *testing.T) {
		_, err := repo.AddProject(ctx, &core.ContextProject{Id: "webapp", Name: "Other"})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetProject(ctx, "webapp")
		require.NoError(t, err)
		assert.Equal(t, "Web Application", got.Name)
	})

	t.Run("update keeps creation time", func(t *testing.T) {
		updated, err := repo.UpdateProject(ctx, &core.ContextProject{
			Id:       "webapp",
			Name:     "Web Application v2",
			IsActive: true,
		})
		require.NoError(t, err)
		assert.Equal(t, added.CreatedAt, updated.CreatedAt)

		got, err := repo.GetProject(ctx, "webapp")
		require.NoError(t, err)
		assert.Equal(t, "Web Application v2", got.Name)
	})

	t.Run("update unknown id", func(t *testing.T) {
		_, err := repo.UpdateProject(ctx, &core.ContextProject{Id: "ghost", Name: "x"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteProject(ctx, "webapp"))
		_, err := repo.GetProject(ctx, "webapp")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteProject(ctx, "webapp"), storage.ErrNotFound)
	})
}

func TestProjectRepository_ListProjects(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		_, err := repo.AddProject(ctx, &core.ContextProject{Id: id, Name: id, IsActive: true})
		require.NoError(t, err)
	}

	projects, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)

	// Badger iterates keys lexicographically, so the listing is ordered by ID.
	assert.Equal(t, "alpha", projects[0].Id)
	assert.Equal(t, "mid", projects[1].Id)
	assert.Equal(t, "zeta", projects[2].Id)
}
