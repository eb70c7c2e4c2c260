package project

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybook/internal/model"
	"daybook/internal/store"
)

func newTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "projects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func repos(t *testing.T) map[string]Repo {
	return map[string]Repo{
		"memory": NewMemoryRepo(),
		"sqlite": NewSQLiteRepo(newTestDB(t)),
	}
}

func TestRepo_CreateAssignsIdentity(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create("user_1", model.Project{Name: "  Work  ", Emoji: "💼"})
			require.NoError(t, err)

			assert.NotEmpty(t, created.ID)
			assert.Equal(t, "Work", created.Name)
			assert.False(t, created.CreatedAt.IsZero())
		})
	}
}

func TestRepo_UsersAreIsolated(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create("user_1", model.Project{Name: "Work"})
			require.NoError(t, err)

			_, err = repo.Get("user_2", created.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			ps, err := repo.List("user_2")
			require.NoError(t, err)
			assert.Empty(t, ps)
		})
	}
}

func TestRepo_PatchLeavesUnsetFieldsAlone(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create("user_1", model.Project{Name: "Work", Emoji: "💼", Color: "#112233"})
			require.NoError(t, err)

			newName := "Deep Work"
			got, err := repo.Update("user_1", created.ID, Patch{Name: &newName})
			require.NoError(t, err)

			assert.Equal(t, "Deep Work", got.Name)
			assert.Equal(t, "💼", got.Emoji)
			assert.Equal(t, "#112233", got.Color)
		})
	}
}

func TestRepo_ListOldestFirst(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			first, err := repo.Create("user_1", model.Project{Name: "a"})
			require.NoError(t, err)
			time.Sleep(2 * time.Millisecond)
			second, err := repo.Create("user_1", model.Project{Name: "b"})
			require.NoError(t, err)

			ps, err := repo.List("user_1")
			require.NoError(t, err)
			require.Len(t, ps, 2)
			assert.Equal(t, first.ID, ps[0].ID)
			assert.Equal(t, second.ID, ps[1].ID)
		})
	}
}

func TestRepo_DeleteUnknown(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, repo.Delete("user_1", "proj_missing"), ErrNotFound)
		})
	}
}
