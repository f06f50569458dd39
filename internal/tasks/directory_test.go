package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/repositories"
	"github.com/desertthunder/favtunes/internal/shared"
	th "github.com/desertthunder/favtunes/internal/testing"
)

type failingStore struct {
	loadErr, saveErr error
}

func (f failingStore) Load(context.Context) (models.Directory, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return models.Directory{}, nil
}

func (f failingStore) Save(context.Context, models.Directory) error { return f.saveErr }

func newTestEngine(t *testing.T) (*DirectoryEngine, *repositories.FileStore, *th.FakeCatalog) {
	t.Helper()
	store := repositories.NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	catalog := th.NewFakeCatalog()
	return NewDirectoryEngine(store, catalog, nil, ""), store, catalog
}

func mustCreate(t *testing.T, e *DirectoryEngine, name, email string) models.User {
	t.Helper()
	u, err := e.CreateUser(context.Background(), name, email)
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return u
}

func TestDirectoryEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateUser", func(t *testing.T) {
		t.Run("Assigns Dense IDs", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			for i := 1; i <= 5; i++ {
				u := mustCreate(t, engine, fmt.Sprintf("user%d", i), fmt.Sprintf("u%d@example.com", i))
				if u.ID != i {
					t.Errorf("expected ID %d, got %d", i, u.ID)
				}
			}

			dir, _ := engine.ListUsers(ctx)
			if len(dir) != 5 {
				t.Errorf("expected 5 users, got %d", len(dir))
			}
		})

		t.Run("Rejects Duplicate Identity", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")

			_, err := engine.CreateUser(ctx, "Ana", "ana@example.com")
			if !errors.Is(err, shared.ErrDuplicateUser) {
				t.Errorf("expected ErrDuplicateUser, got %v", err)
			}

			dir, _ := engine.ListUsers(ctx)
			if len(dir) != 1 {
				t.Errorf("expected directory unchanged, got %d users", len(dir))
			}
		})

		t.Run("Same Name Different Email Is Allowed", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			if _, err := engine.CreateUser(ctx, "Ana", "ana@work.example.com"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})

		t.Run("Rejects Invalid Input", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			for _, tc := range []struct{ name, email string }{
				{"", "ana@example.com"},
				{"Ana", ""},
				{"Ana", "not-an-email"},
			} {
				if _, err := engine.CreateUser(ctx, tc.name, tc.email); !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("CreateUser(%q, %q): expected ErrInvalidInput, got %v", tc.name, tc.email, err)
				}
			}
		})

		t.Run("Concurrent Creates Keep IDs Dense", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)

			var wg sync.WaitGroup
			for i := range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := engine.CreateUser(ctx, fmt.Sprintf("user%d", i), fmt.Sprintf("u%d@example.com", i)); err != nil {
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			dir, _ := engine.ListUsers(ctx)
			if len(dir) != 20 {
				t.Fatalf("expected 20 users, got %d", len(dir))
			}
			for i := 1; i <= 20; i++ {
				if _, ok := dir[i]; !ok {
					t.Errorf("missing ID %d", i)
				}
			}
		})
	})

	t.Run("GetUser", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		mustCreate(t, engine, "Ana", "ana@example.com")

		u, err := engine.GetUser(ctx, 1)
		if err != nil || u.Name != "Ana" {
			t.Errorf("expected Ana, got %+v (%v)", u, err)
		}

		if _, err := engine.GetUser(ctx, 9); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("UpdateUser", func(t *testing.T) {
		t.Run("Preserves Favorites", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			if _, _, err := engine.AddFavoriteArtist(ctx, 1, "Queen"); err != nil {
				t.Fatalf("AddFavoriteArtist failed: %v", err)
			}

			u, err := engine.UpdateUser(ctx, 1, "Ana María", "ana.maria@example.com")
			if err != nil {
				t.Fatalf("UpdateUser failed: %v", err)
			}
			if u.Name != "Ana María" || u.Email != "ana.maria@example.com" {
				t.Errorf("identity not updated: %+v", u)
			}
			if len(u.FavoriteArtists) != 1 {
				t.Errorf("expected favorites to be kept, got %+v", u.FavoriteArtists)
			}
		})

		t.Run("Rejects Another User's Identity", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			mustCreate(t, engine, "Bo", "bo@example.com")

			if _, err := engine.UpdateUser(ctx, 2, "Ana", "ana@example.com"); !errors.Is(err, shared.ErrDuplicateUser) {
				t.Fatalf("expected ErrDuplicateUser, got %v", err)
			}

			u, err := engine.GetUser(ctx, 2)
			if err != nil {
				t.Fatalf("GetUser failed: %v", err)
			}
			if u.Name != "Bo" || u.Email != "bo@example.com" {
				t.Errorf("expected user 2 unchanged, got %+v", u)
			}
		})

		t.Run("Keeps Own Identity", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			if _, err := engine.UpdateUser(ctx, 1, "Ana", "ana@example.com"); err != nil {
				t.Errorf("expected same identity to be accepted, got %v", err)
			}
		})

		t.Run("Unknown User", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			if _, err := engine.UpdateUser(ctx, 3, "Ana", "ana@example.com"); !errors.Is(err, shared.ErrUserNotFound) {
				t.Errorf("expected ErrUserNotFound, got %v", err)
			}
		})

		t.Run("Invalid Input", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			if _, err := engine.UpdateUser(ctx, 1, "Ana", "bad"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("DeleteUser", func(t *testing.T) {
		t.Run("Renumbers Remaining Users", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			for _, n := range []string{"a", "b", "c", "d"} {
				mustCreate(t, engine, n, n+"@example.com")
			}

			if err := engine.DeleteUser(ctx, 2); err != nil {
				t.Fatalf("DeleteUser failed: %v", err)
			}

			dir, _ := engine.ListUsers(ctx)
			want := map[int]string{1: "a", 2: "c", 3: "d"}
			if len(dir) != len(want) {
				t.Fatalf("expected %d users, got %d", len(want), len(dir))
			}
			for id, name := range want {
				if dir[id].Name != name || dir[id].ID != id {
					t.Errorf("id %d: expected %s, got %+v", id, name, dir[id])
				}
			}
		})

		t.Run("Unknown User", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			if err := engine.DeleteUser(ctx, 1); !errors.Is(err, shared.ErrUserNotFound) {
				t.Errorf("expected ErrUserNotFound, got %v", err)
			}
		})
	})

	t.Run("AddFavoriteArtist", func(t *testing.T) {
		t.Run("Appends Catalog Match", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")

			u, ref, err := engine.AddFavoriteArtist(ctx, 1, "queen")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.CatalogID != "a-queen" || ref.Name != "Queen" {
				t.Errorf("unexpected ref: %+v", ref)
			}
			if len(u.FavoriteArtists) != 1 || u.FavoriteArtists[0] != ref {
				t.Errorf("unexpected favorites: %+v", u.FavoriteArtists)
			}
		})

		t.Run("Duplicate Leaves List Unchanged", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			engine.AddFavoriteArtist(ctx, 1, "Queen")

			_, _, err := engine.AddFavoriteArtist(ctx, 1, "QUEEN")
			if !errors.Is(err, shared.ErrDuplicateFavorite) {
				t.Errorf("expected ErrDuplicateFavorite, got %v", err)
			}
			if err != nil && !strings.Contains(err.Error(), "Queen") {
				t.Errorf("expected message to name the artist, got %v", err)
			}

			artists, _ := engine.FavoriteArtists(ctx, 1)
			if len(artists) != 1 {
				t.Errorf("expected 1 favorite, got %d", len(artists))
			}
		})

		t.Run("Unknown User Skips Catalog", func(t *testing.T) {
			engine, _, catalog := newTestEngine(t)
			_, _, err := engine.AddFavoriteArtist(ctx, 7, "Queen")
			if !errors.Is(err, shared.ErrUserNotFound) {
				t.Errorf("expected ErrUserNotFound, got %v", err)
			}
			if catalog.Calls() != 0 {
				t.Errorf("expected no catalog calls, got %d", catalog.Calls())
			}
		})

		t.Run("Unknown Artist", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			if _, _, err := engine.AddFavoriteArtist(ctx, 1, "Nobody"); !errors.Is(err, shared.ErrArtistNotFound) {
				t.Errorf("expected ErrArtistNotFound, got %v", err)
			}
		})

		t.Run("Catalog Failure Is Passed Through", func(t *testing.T) {
			engine, _, catalog := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			catalog.Err = shared.ErrAuthFailed

			if _, _, err := engine.AddFavoriteArtist(ctx, 1, "Queen"); !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Blank Name", func(t *testing.T) {
			engine, _, catalog := newTestEngine(t)
			if _, _, err := engine.AddFavoriteArtist(ctx, 1, "  "); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if catalog.Calls() != 0 {
				t.Errorf("expected no catalog calls, got %d", catalog.Calls())
			}
		})
	})

	t.Run("AddFavoriteSong", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		mustCreate(t, engine, "Ana", "ana@example.com")

		u, ref, err := engine.AddFavoriteSong(ctx, 1, "Bohemian Rhapsody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ArtistName != "Queen" || len(u.FavoriteSongs) != 1 {
			t.Errorf("unexpected result: %+v %+v", ref, u)
		}

		if _, _, err := engine.AddFavoriteSong(ctx, 1, "bohemian rhapsody"); !errors.Is(err, shared.ErrDuplicateFavorite) {
			t.Errorf("expected ErrDuplicateFavorite, got %v", err)
		}
		if _, _, err := engine.AddFavoriteSong(ctx, 1, "unknown"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("Favorites", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		mustCreate(t, engine, "Ana", "ana@example.com")

		if _, err := engine.FavoriteArtists(ctx, 1); !errors.Is(err, shared.ErrNoFavorites) {
			t.Errorf("expected ErrNoFavorites, got %v", err)
		}
		if _, err := engine.FavoriteSongs(ctx, 1); !errors.Is(err, shared.ErrNoFavorites) {
			t.Errorf("expected ErrNoFavorites, got %v", err)
		}
		if _, err := engine.FavoriteSongs(ctx, 2); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}

		engine.AddFavoriteSong(ctx, 1, "Hello")
		songs, err := engine.FavoriteSongs(ctx, 1)
		if err != nil || len(songs) != 1 || songs[0].Title != "Hello" {
			t.Errorf("unexpected songs: %+v (%v)", songs, err)
		}
	})

	t.Run("RemoveFavoriteArtist", func(t *testing.T) {
		t.Run("Removes By Exact Name", func(t *testing.T) {
			engine, store, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			engine.AddFavoriteArtist(ctx, 1, "Queen")
			engine.AddFavoriteArtist(ctx, 1, "Adele")

			u, removed, err := engine.RemoveFavoriteArtist(ctx, 1, "Queen")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if removed.Name != "Queen" || len(u.FavoriteArtists) != 1 || u.FavoriteArtists[0].Name != "Adele" {
				t.Errorf("unexpected result: %+v %+v", removed, u.FavoriteArtists)
			}

			engine.RemoveFavoriteArtist(ctx, 1, "Adele")
			if _, err := engine.FavoriteArtists(ctx, 1); !errors.Is(err, shared.ErrNoFavorites) {
				t.Errorf("expected ErrNoFavorites after emptying the list, got %v", err)
			}

			raw, _ := os.ReadFile(store.Path())
			if !strings.Contains(string(raw), `"favorite_artists": []`) {
				t.Errorf("expected emptied list to persist as [], got %s", raw)
			}
		})

		t.Run("Absent Name Leaves List Unchanged", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			engine.AddFavoriteArtist(ctx, 1, "Queen")

			_, _, err := engine.RemoveFavoriteArtist(ctx, 1, "queen")
			if !errors.Is(err, shared.ErrFavoriteNotFound) {
				t.Errorf("expected ErrFavoriteNotFound, got %v", err)
			}

			artists, _ := engine.FavoriteArtists(ctx, 1)
			if len(artists) != 1 {
				t.Errorf("expected list unchanged, got %+v", artists)
			}
		})

		t.Run("No Favorites", func(t *testing.T) {
			engine, _, _ := newTestEngine(t)
			mustCreate(t, engine, "Ana", "ana@example.com")
			if _, _, err := engine.RemoveFavoriteArtist(ctx, 1, "Queen"); !errors.Is(err, shared.ErrNoFavorites) {
				t.Errorf("expected ErrNoFavorites, got %v", err)
			}
		})
	})

	t.Run("RemoveFavoriteSong", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		mustCreate(t, engine, "Ana", "ana@example.com")
		engine.AddFavoriteSong(ctx, 1, "Hello")

		if _, _, err := engine.RemoveFavoriteSong(ctx, 1, "Goodbye"); !errors.Is(err, shared.ErrFavoriteNotFound) {
			t.Errorf("expected ErrFavoriteNotFound, got %v", err)
		}
		u, removed, err := engine.RemoveFavoriteSong(ctx, 1, "Hello")
		if err != nil || removed.Title != "Hello" || len(u.FavoriteSongs) != 0 {
			t.Errorf("unexpected result: %+v %+v (%v)", removed, u, err)
		}
	})

	t.Run("ArtistInfo", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)

		info, err := engine.ArtistInfo(ctx, "Queen")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Name != "Queen" || info.Popularity == nil || *info.Popularity != 82 || len(info.TopTracks) != 5 {
			t.Errorf("unexpected info: %+v", info)
		}

		info, err = engine.ArtistInfo(ctx, "Adele")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Popularity != nil || info.TopTracks == nil {
			t.Errorf("expected null popularity and empty top tracks, got %+v", info)
		}

		if _, err := engine.ArtistInfo(ctx, "Nobody"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("SongInfo", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)

		info, err := engine.SongInfo(ctx, "Bohemian Rhapsody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Title != "Bohemian Rhapsody" || info.Artist != "Queen" {
			t.Errorf("unexpected info: %+v", info)
		}

		if _, err := engine.SongInfo(ctx, "nope"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("Storage Failures", func(t *testing.T) {
		t.Run("Load", func(t *testing.T) {
			engine := NewDirectoryEngine(failingStore{loadErr: shared.ErrStorage}, th.NewFakeCatalog(), nil, "")
			if _, err := engine.ListUsers(ctx); !errors.Is(err, shared.ErrStorage) {
				t.Errorf("expected ErrStorage, got %v", err)
			}
		})

		t.Run("Save", func(t *testing.T) {
			engine := NewDirectoryEngine(failingStore{saveErr: shared.ErrStorage}, th.NewFakeCatalog(), nil, "")
			if _, err := engine.CreateUser(ctx, "Ana", "ana@example.com"); !errors.Is(err, shared.ErrStorage) {
				t.Errorf("expected ErrStorage, got %v", err)
			}
		})
	})
}
