package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *ClientRepo {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(dbPath))
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewClientRepo(db)
}

func TestMigrationsAndPrefs(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(dbPath))
	// idempotent
	require.NoError(t, RunMigrations(dbPath))

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	prefs := NewPrefRepo(db)

	v, err := prefs.Get(ctx, "active_view", "dashboard")
	require.NoError(t, err)
	require.Equal(t, "dashboard", v)

	require.NoError(t, prefs.Set(ctx, "active_view", "bank"))
	require.NoError(t, prefs.Set(ctx, "active_view", "review"))
	v, err = prefs.Get(ctx, "active_view", "dashboard")
	require.NoError(t, err)
	require.Equal(t, "review", v)
}

func TestSavedFilters(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(dbPath))
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	repo := NewFilterRepo(db)

	f := SavedFilter{
		ID:        uuid.NewString(),
		View:      "bank",
		Name:      "Umatchede over 10k",
		Query:     "status=unmatched&min_amount=10000",
		CreatedAt: Now(),
	}
	require.NoError(t, repo.Save(ctx, f))

	got, err := repo.ListByView(ctx, "bank")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, f.Name, got[0].Name)
	require.Equal(t, f.Query, got[0].Query)

	other, err := repo.ListByView(ctx, "review")
	require.NoError(t, err)
	require.Empty(t, other)

	require.NoError(t, repo.Delete(ctx, f.ID))
	got, err = repo.ListByView(ctx, "bank")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRecentClientsOrdering(t *testing.T) {
	t.Parallel()

	repo := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, "c1", "Fjellheim AS"))
	time.Sleep(1100 * time.Millisecond) // store truncates to seconds
	require.NoError(t, repo.Touch(ctx, "c2", "Brygga Regnskap AS"))

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "c2", recent[0].ClientID)

	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, repo.Touch(ctx, "c1", "Fjellheim AS"))
	recent, err = repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "c1", recent[0].ClientID)

	capped, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
}
