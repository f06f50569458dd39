package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/shared"
	"github.com/go-chi/chi/v5"
)

// Directory is the set of operations the API exposes. [tasks.DirectoryEngine] implements it.
type Directory interface {
	CreateUser(ctx context.Context, name, email string) (models.User, error)
	ListUsers(ctx context.Context) (models.Directory, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	UpdateUser(ctx context.Context, id int, name, email string) (models.User, error)
	DeleteUser(ctx context.Context, id int) error
	AddFavoriteArtist(ctx context.Context, id int, name string) (models.User, models.ArtistRef, error)
	AddFavoriteSong(ctx context.Context, id int, name string) (models.User, models.SongRef, error)
	FavoriteArtists(ctx context.Context, id int) ([]models.ArtistRef, error)
	FavoriteSongs(ctx context.Context, id int) ([]models.SongRef, error)
	RemoveFavoriteArtist(ctx context.Context, id int, name string) (models.User, models.ArtistRef, error)
	RemoveFavoriteSong(ctx context.Context, id int, title string) (models.User, models.SongRef, error)
	ArtistInfo(ctx context.Context, name string) (models.ArtistInfo, error)
	SongInfo(ctx context.Context, name string) (models.SongInfo, error)
}

// maxBodyBytes caps request bodies; every payload is a couple of short strings.
const maxBodyBytes = 64 << 10

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type artistRequest struct {
	Name string `json:"nombre_artista"`
}

type songRequest struct {
	Name string `json:"nombre_cancion"`
}

type userResponse struct {
	User models.User `json:"user"`
}

type usersResponse struct {
	Users models.Directory `json:"users"`
}

type detailResponse struct {
	Detail string       `json:"detail"`
	User   *models.User `json:"user,omitempty"`
}

type favoriteArtistsResponse struct {
	UserID  int                `json:"user_id"`
	Artists []models.ArtistRef `json:"artistas_favoritos"`
}

type favoriteSongsResponse struct {
	UserID int              `json:"user_id"`
	Songs  []models.SongRef `json:"canciones_favoritas"`
}

// DirectoryHandler serves the users, favorites and catalog endpoints.
type DirectoryHandler struct {
	dir    Directory
	logger *log.Logger
}

func NewDirectoryHandler(dir Directory, logger *log.Logger) *DirectoryHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &DirectoryHandler{dir: dir, logger: logger}
}

// Register adds every endpoint to r.
func (h *DirectoryHandler) Register(r Router) {
	for _, p := range []string{"/api/users", "/api/users/"} {
		r.Handle(http.MethodPost, p, http.HandlerFunc(h.CreateUser))
		r.Handle(http.MethodGet, p, http.HandlerFunc(h.ListUsers))
	}
	r.Handle(http.MethodGet, "/api/users/{id}", http.HandlerFunc(h.GetUser))
	r.Handle(http.MethodPut, "/api/users/{id}", http.HandlerFunc(h.UpdateUser))
	r.Handle(http.MethodDelete, "/api/users/{id}", http.HandlerFunc(h.DeleteUser))

	r.Handle(http.MethodPost, "/api/users/{id}/add-favorite-artist", http.HandlerFunc(h.AddFavoriteArtist))
	r.Handle(http.MethodPost, "/api/users/{id}/add-favorite-song", http.HandlerFunc(h.AddFavoriteSong))
	r.Handle(http.MethodGet, "/api/users/{id}/favorite-artists", http.HandlerFunc(h.FavoriteArtists))
	r.Handle(http.MethodGet, "/api/users/{id}/favorite-songs", http.HandlerFunc(h.FavoriteSongs))
	r.Handle(http.MethodDelete, "/api/users/{id}/delete-favorite-artist", http.HandlerFunc(h.RemoveFavoriteArtist))
	r.Handle(http.MethodDelete, "/api/users/{id}/delete-favorite-song", http.HandlerFunc(h.RemoveFavoriteSong))

	for _, p := range []string{"/api/spotify/artist-info", "/api/spotify/artist-info/"} {
		r.Handle(http.MethodGet, p, http.HandlerFunc(h.ArtistInfo))
	}
	for _, p := range []string{"/api/spotify/song-info", "/api/spotify/song-info/"} {
		r.Handle(http.MethodGet, p, http.HandlerFunc(h.SongInfo))
	}
}

func userID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: user id must be an integer, got %q", shared.ErrInvalidInput, raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", shared.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON body", shared.ErrInvalidInput)
	}
	return nil
}

func (h *DirectoryHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeFailure(w, r, h.logger, err)
}

func (h *DirectoryHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.dir.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.dir.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if users == nil {
		users = models.Directory{}
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

func (h *DirectoryHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.dir.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *DirectoryHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.dir.UpdateUser(r.Context(), id, req.Name, req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *DirectoryHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.dir.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{Detail: "user deleted"})
}

func (h *DirectoryHandler) AddFavoriteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req artistRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, ref, err := h.dir.AddFavoriteArtist(r.Context(), id, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{
		Detail: fmt.Sprintf("artist %s added to favorites", ref.Name),
		User:   &user,
	})
}

func (h *DirectoryHandler) AddFavoriteSong(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req songRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, ref, err := h.dir.AddFavoriteSong(r.Context(), id, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{
		Detail: fmt.Sprintf("song %s added to favorites", ref.Title),
		User:   &user,
	})
}

func (h *DirectoryHandler) FavoriteArtists(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	artists, err := h.dir.FavoriteArtists(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteArtistsResponse{UserID: id, Artists: artists})
}

func (h *DirectoryHandler) FavoriteSongs(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	songs, err := h.dir.FavoriteSongs(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteSongsResponse{UserID: id, Songs: songs})
}

func (h *DirectoryHandler) RemoveFavoriteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req artistRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, ref, err := h.dir.RemoveFavoriteArtist(r.Context(), id, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{
		Detail: fmt.Sprintf("artist %s removed from favorites", ref.Name),
		User:   &user,
	})
}

func (h *DirectoryHandler) RemoveFavoriteSong(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req songRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, ref, err := h.dir.RemoveFavoriteSong(r.Context(), id, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{
		Detail: fmt.Sprintf("song %s removed from favorites", ref.Title),
		User:   &user,
	})
}

func (h *DirectoryHandler) ArtistInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.dir.ArtistInfo(r.Context(), r.URL.Query().Get("nombre_artista"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *DirectoryHandler) SongInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.dir.SongInfo(r.Context(), r.URL.Query().Get("nombre_cancion"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// NewAPI assembles the full router: middleware, directory endpoints, health and metrics.
func NewAPI(dir Directory, metrics *Metrics, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = log.Default()
	}

	r := NewBasicRouter()
	r.Use(RequestID(), Recovery(logger), RequestLogging(logger))
	if metrics != nil {
		r.Use(Instrument(metrics))
	}

	NewDirectoryHandler(dir, logger).Register(r)
	r.Handler(HealthHandler{})
	if metrics != nil {
		r.Handler(NewMetricsHandler(metrics))
	}
	return r
}
