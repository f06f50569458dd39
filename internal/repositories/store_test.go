package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDirectory() models.Directory {
	ana := models.NewUser(1, "Ana", "ana@x.com")
	ana.FavoriteArtists = []models.ArtistRef{{CatalogID: "A1", Name: "Foo", URL: "https://open.spotify.com/artist/A1"}}
	ana.FavoriteSongs = []models.SongRef{}

	bo := models.NewUser(2, "Bo", "bo@x.com")
	bo.FavoriteSongs = []models.SongRef{{CatalogID: "T1", Title: "Bar", ArtistName: "Foo", URL: "https://open.spotify.com/track/T1"}}

	return models.Directory{1: ana, 2: bo}
}

// storeContract runs the behaviour every [Store] must share.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		dir, err := newStore(t).Load(ctx)
		if err != nil {
			t.Fatalf("expected no error for missing document, got %v", err)
		}
		if dir == nil || len(dir) != 0 {
			t.Errorf("expected empty directory, got %v", dir)
		}
	})

	t.Run("Save Then Load", func(t *testing.T) {
		store := newStore(t)
		want := sampleDirectory()

		if err := store.Save(ctx, want); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("loaded directory differs\n got: %+v\nwant: %+v", got, want)
		}
	})

	t.Run("Save Load Is Idempotent", func(t *testing.T) {
		store := newStore(t)
		if err := store.Save(ctx, sampleDirectory()); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		first, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if err := store.Save(ctx, first); err != nil {
			t.Fatalf("failed to save loaded directory: %v", err)
		}
		second, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("failed to reload: %v", err)
		}

		if !reflect.DeepEqual(first, second) {
			t.Errorf("save(load()) changed content\nfirst:  %+v\nsecond: %+v", first, second)
		}
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		store := newStore(t)
		if err := store.Save(ctx, sampleDirectory()); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.Save(ctx, models.Directory{1: models.NewUser(1, "Cy", "cy@x.com")}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		got, _ := store.Load(ctx)
		if len(got) != 1 || got[1].Name != "Cy" {
			t.Errorf("expected single user Cy, got %+v", got)
		}
	})
}

func TestFileStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		return NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	})

	t.Run("Malformed Document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		_, err := NewFileStore(path).Load(context.Background())
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Reads Legacy Document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.json")
		doc := `{
    "1": {"id": 1, "name": "Ana", "email": "ana@x.com"},
    "2": {"id": 2, "name": "Bo", "email": "bo@x.com", "favorite_artists": []}
}`
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		dir, err := NewFileStore(path).Load(context.Background())
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if dir[1].FavoriteArtists != nil {
			t.Error("absent list should load as nil")
		}
		if dir[2].FavoriteArtists == nil {
			t.Error("empty list should load as non-nil")
		}
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(filepath.Join(tmpDir, "users.json"))
		if err := store.Save(context.Background(), sampleDirectory()); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		entries, err := os.ReadDir(tmpDir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "users.json" {
			t.Errorf("expected only users.json, got %v", entries)
		}
	})

	t.Run("Saved File Is World Readable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.json")
		store := NewFileStore(path)
		if err := store.Save(context.Background(), sampleDirectory()); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat: %v", err)
		}
		if info.Mode().Perm() != 0644 {
			t.Errorf("expected mode 0644, got %v", info.Mode().Perm())
		}
	})

	t.Run("Save Into Missing Directory", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "missing", "users.json"))
		if err := store.Save(context.Background(), sampleDirectory()); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		store := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
		if _, err := store.Load(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		return NewSQLiteStore(setupTestDB(t))
	})

	t.Run("Malformed Row", func(t *testing.T) {
		db := setupTestDB(t)
		if _, err := db.Exec("INSERT INTO documents (name, body) VALUES (?, ?)", directoryDocument, "[]"); err != nil {
			t.Fatalf("failed to insert fixture: %v", err)
		}

		_, err := NewSQLiteStore(db).Load(context.Background())
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Missing Schema", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := NewSQLiteStore(db).Load(context.Background()); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})
}
