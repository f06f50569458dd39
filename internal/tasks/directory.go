package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/repositories"
	"github.com/desertthunder/favtunes/internal/services"
	"github.com/desertthunder/favtunes/internal/shared"
)

// DefaultMarket is used for top-track lookups when none is configured.
const DefaultMarket = "US"

// DirectoryEngine implements the user and favorites operations over a [repositories.Store] and a [services.Catalog].
//
// Every operation runs load → mutate → save under one mutex.
type DirectoryEngine struct {
	store   repositories.Store
	catalog services.Catalog
	logger  *log.Logger
	market  string

	mu sync.Mutex
}

// NewDirectoryEngine creates a new DirectoryEngine. A nil logger discards output.
func NewDirectoryEngine(store repositories.Store, catalog services.Catalog, logger *log.Logger, market string) *DirectoryEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if market == "" {
		market = DefaultMarket
	}
	return &DirectoryEngine{
		store:   store,
		catalog: catalog,
		logger:  shared.WithLogger(logger, "component", "directory"),
		market:  market,
	}
}

// view runs fn against a freshly loaded directory while holding the lock.
func (e *DirectoryEngine) view(ctx context.Context, fn func(models.Directory) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dir, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	return fn(dir)
}

// update is view followed by a save of the (possibly replaced) directory when fn succeeds.
func (e *DirectoryEngine) update(ctx context.Context, fn func(models.Directory) (models.Directory, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dir, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	next, err := fn(dir)
	if err != nil {
		return err
	}
	return e.store.Save(ctx, next)
}

func lookup(dir models.Directory, id int) (models.User, error) {
	u, ok := dir[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %d", shared.ErrUserNotFound, id)
	}
	return u, nil
}

func requireName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", shared.ErrInvalidInput, kind)
	}
	return nil
}

// CreateUser adds a user with the next free ID.
func (e *DirectoryEngine) CreateUser(ctx context.Context, name, email string) (models.User, error) {
	if err := models.ValidateIdentity(name, email); err != nil {
		return models.User{}, err
	}

	var created models.User
	err := e.update(ctx, func(dir models.Directory) (models.Directory, error) {
		if _, exists := dir.FindIdentity(name, email); exists {
			return nil, shared.ErrDuplicateUser
		}
		created = models.NewUser(dir.NextID(), name, email)
		dir[created.ID] = created
		return dir, nil
	})
	if err != nil {
		return models.User{}, err
	}

	e.logger.Info("user created", "id", created.ID)
	return created, nil
}

// ListUsers returns the whole directory.
func (e *DirectoryEngine) ListUsers(ctx context.Context) (models.Directory, error) {
	var out models.Directory
	err := e.view(ctx, func(dir models.Directory) error {
		out = dir
		return nil
	})
	return out, err
}

// GetUser returns a single user.
func (e *DirectoryEngine) GetUser(ctx context.Context, id int) (models.User, error) {
	var out models.User
	err := e.view(ctx, func(dir models.Directory) error {
		u, err := lookup(dir, id)
		out = u
		return err
	})
	return out, err
}

// UpdateUser replaces the name and email of a user. Favorites are kept.
func (e *DirectoryEngine) UpdateUser(ctx context.Context, id int, name, email string) (models.User, error) {
	if err := models.ValidateIdentity(name, email); err != nil {
		return models.User{}, err
	}

	var updated models.User
	err := e.update(ctx, func(dir models.Directory) (models.Directory, error) {
		u, err := lookup(dir, id)
		if err != nil {
			return nil, err
		}
		if other, ok := dir.FindIdentity(name, email); ok && other.ID != id {
			return nil, fmt.Errorf("%w: user %d already has that name and email", shared.ErrDuplicateUser, other.ID)
		}
		u.Name, u.Email = name, email
		dir[id] = u
		updated = u
		return dir, nil
	})
	if err != nil {
		return models.User{}, err
	}

	e.logger.Info("user updated", "id", id)
	return updated, nil
}

// DeleteUser removes a user and renumbers the rest to 1..N.
func (e *DirectoryEngine) DeleteUser(ctx context.Context, id int) error {
	err := e.update(ctx, func(dir models.Directory) (models.Directory, error) {
		if _, err := lookup(dir, id); err != nil {
			return nil, err
		}
		delete(dir, id)
		return dir.Renumber(), nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("user deleted", "id", id)
	return nil
}

// AddFavoriteArtist resolves name in the catalog and appends the first match to the user's artists.
func (e *DirectoryEngine) AddFavoriteArtist(ctx context.Context, id int, name string) (models.User, models.ArtistRef, error) {
	if err := requireName("artist", name); err != nil {
		return models.User{}, models.ArtistRef{}, err
	}

	var (
		user models.User
		ref  models.ArtistRef
	)
	err := e.update(ctx, func(dir models.Directory) (models.Directory, error) {
		u, err := lookup(dir, id)
		if err != nil {
			return nil, err
		}

		artist, err := e.catalog.FindArtist(ctx, name)
		if err != nil {
			return nil, err
		}

		ref = artist.Ref()
		if u.HasArtist(ref.CatalogID) {
			return nil, fmt.Errorf("artist %s %w", ref.Name, shared.ErrDuplicateFavorite)
		}

		u.FavoriteArtists = append(u.FavoriteArtists, ref)
		dir[id] = u
		user = u
		return dir, nil
	})
	if err != nil {
		return models.User{}, models.ArtistRef{}, err
	}

	e.logger.Info("favorite artist added", "id", id, "artist", ref.Name)
	return user, ref, nil
}

// AddFavoriteSong resolves name in the catalog and appends the first match to the user's songs.
func (e *DirectoryEngine) AddFavoriteSong(ctx context.Context, id int, name string) (models.User, models.SongRef, error) {
	if err := requireName("song", name); err != nil {
		return models.User{}, models.SongRef{}, err
	}

	var (
		user models.User
		ref  models.SongRef
	)
	err := e.update(ctx, func(dir models.Directory) (models.Directory, error) {
		u, err := lookup(dir, id)
		if err != nil {
			return nil, err
		}

		song, err := e.catalog.FindTrack(ctx, name)
		if err != nil {
			return nil, err
		}

		ref = song.Ref()
		if u.HasSong(ref.CatalogID) {
			return nil, fmt.Errorf("song %s %w", ref.Title, shared.ErrDuplicateFavorite)
		}

		u.FavoriteSongs = append(u.FavoriteSongs, ref)
		dir[id] = u
		user = u
		return dir, nil
	})
	if err != nil {
		return models.User{}, models.SongRef{}, err
	}

	e.logger.Info("favorite song added", "id", id, "song", ref.Title)
	return user, ref, nil
}

// FavoriteArtists returns the user's favorite artists; an absent or empty list is [shared.ErrNoFavorites].
func (e *DirectoryEngine) FavoriteArtists(ctx context.Context, id int) ([]models.ArtistRef, error) {
	var out []models.ArtistRef
	err := e.view(ctx, func(dir models.Directory) error {
		u, err := lookup(dir, id)
		if err != nil {
			return err
		}
		if len(u.FavoriteArtists) == 0 {
			return fmt.Errorf("%w: no favorite artists", shared.ErrNoFavorites)
		}
		out = u.FavoriteArtists
		return nil
	})
	return out, err
}

// FavoriteSongs returns the user's favorite songs; an absent or empty list is [shared.ErrNoFavorites].
func (e *DirectoryEngine) FavoriteSongs(ctx context.Context, id int) ([]models.SongRef, error) {
	var out []models.SongRef
	err := e.view(ctx, func(dir models.Directory) error {
		u, err := lookup(dir, id)
		if err != nil {
			return err
		}
		if len(u.FavoriteSongs) == 0 {
			return fmt.Errorf("%w: no favorite songs", shared.ErrNoFavorites)
		}
		out = u.FavoriteSongs
		return nil
	})
	return out, err
}

// RemoveFavoriteArtist removes the first favorite artist whose name equals name exactly.
func (e *DirectoryEngine) RemoveFavoriteArtist(ctx context.Context, id int, name string) (models.User, models.ArtistRef, error) {
	var (
		user    models.User
		removed models.ArtistRef
	)
	err := e.update(ctx, func(dir models.Directory) (models.Directory, error) {
		u, err := lookup(dir, id)
		if err != nil {
			return nil, err
		}
		if len(u.FavoriteArtists) == 0 {
			return nil, fmt.Errorf("%w: no favorite artists", shared.ErrNoFavorites)
		}

		idx := -1
		for i, a := range u.FavoriteArtists {
			if a.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("artist %s %w", name, shared.ErrFavoriteNotFound)
		}

		removed = u.FavoriteArtists[idx]
		u.FavoriteArtists = append(u.FavoriteArtists[:idx:idx], u.FavoriteArtists[idx+1:]...)
		dir[id] = u
		user = u
		return dir, nil
	})
	if err != nil {
		return models.User{}, models.ArtistRef{}, err
	}

	e.logger.Info("favorite artist removed", "id", id, "artist", removed.Name)
	return user, removed, nil
}

// RemoveFavoriteSong removes the first favorite song whose title equals title exactly.
func (e *DirectoryEngine) RemoveFavoriteSong(ctx context.Context, id int, title string) (models.User, models.SongRef, error) {
	var (
		user    models.User
		removed models.SongRef
	)
	err := e.update(ctx, func(dir models.Directory) (models.Directory, error) {
		u, err := lookup(dir, id)
		if err != nil {
			return nil, err
		}
		if len(u.FavoriteSongs) == 0 {
			return nil, fmt.Errorf("%w: no favorite songs", shared.ErrNoFavorites)
		}

		idx := -1
		for i, s := range u.FavoriteSongs {
			if s.Title == title {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("song %s %w", title, shared.ErrFavoriteNotFound)
		}

		removed = u.FavoriteSongs[idx]
		u.FavoriteSongs = append(u.FavoriteSongs[:idx:idx], u.FavoriteSongs[idx+1:]...)
		dir[id] = u
		user = u
		return dir, nil
	})
	if err != nil {
		return models.User{}, models.SongRef{}, err
	}

	e.logger.Info("favorite song removed", "id", id, "song", removed.Title)
	return user, removed, nil
}

// ArtistInfo looks up an artist and its top five tracks in the configured market.
func (e *DirectoryEngine) ArtistInfo(ctx context.Context, name string) (models.ArtistInfo, error) {
	if err := requireName("artist", name); err != nil {
		return models.ArtistInfo{}, err
	}

	artist, err := e.catalog.FindArtist(ctx, name)
	if err != nil {
		return models.ArtistInfo{}, err
	}

	top, err := e.catalog.TopTracks(ctx, artist.CatalogID, e.market)
	if err != nil {
		return models.ArtistInfo{}, err
	}
	if top == nil {
		top = []string{}
	}

	return models.ArtistInfo{
		Name:       artist.Name,
		Popularity: artist.Popularity,
		URL:        artist.URL,
		TopTracks:  top,
	}, nil
}

// SongInfo looks up a track in the catalog.
func (e *DirectoryEngine) SongInfo(ctx context.Context, name string) (models.SongInfo, error) {
	if err := requireName("song", name); err != nil {
		return models.SongInfo{}, err
	}

	song, err := e.catalog.FindTrack(ctx, name)
	if err != nil {
		return models.SongInfo{}, err
	}

	return models.SongInfo{
		Title:      song.Title,
		Artist:     song.ArtistName,
		URL:        song.URL,
		Popularity: song.Popularity,
	}, nil
}
