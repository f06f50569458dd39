// Spotify Web API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"
	topTracksLimit = 5
)

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Genres       []string     `json:"genres"`
	Popularity   *int         `json:"popularity"`
	ExternalURLs externalURLs `json:"external_urls"`
	URI          string       `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Popularity   *int            `json:"popularity"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

type artistPage struct {
	Items []SpotifyArtist `json:"items"`
	Total int             `json:"total"`
}

type trackPage struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
}

// SpotifySearchResponse is the body of GET /search. Only the requested type is present.
type SpotifySearchResponse struct {
	Artists *artistPage `json:"artists"`
	Tracks  *trackPage  `json:"tracks"`
}

// SpotifyTopTracks is the body of GET /artists/{id}/top-tracks.
type SpotifyTopTracks struct {
	Tracks []SpotifyTrack `json:"tracks"`
}

// SpotifyService implements [Catalog] against the Spotify Web API using app-only (client credentials) tokens.
type SpotifyService struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration
	observer   Observer
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	BaseURL    string       // defaults to the public Web API
	Tokens     TokenSource  // required
	HTTPClient *http.Client // defaults to a client with a 10s timeout
	RateLimit  float64      // requests per second, <= 0 disables throttling
	MaxRetries int          // extra attempts for GETs failing with transport errors or 5xx
	Observer   Observer
}

// NewSpotifyService creates a new Spotify catalog client.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.Tokens == nil {
		return nil, fmt.Errorf("%w: a token source is required", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &SpotifyService{
		baseURL:    opts.BaseURL,
		tokens:     opts.Tokens,
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		maxRetries: opts.MaxRetries,
		retryWait:  200 * time.Millisecond,
		observer:   opts.Observer,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// FindArtist searches for an artist and maps the first result.
func (s *SpotifyService) FindArtist(ctx context.Context, name string) (*models.Artist, error) {
	var resp SpotifySearchResponse
	if err := s.search(ctx, name, "artist", &resp); err != nil {
		s.observer.observe("find_artist", "error")
		return nil, err
	}

	if resp.Artists == nil {
		s.observer.observe("find_artist", "error")
		return nil, fmt.Errorf("%w: search response missing artists", shared.ErrCatalog)
	}
	if len(resp.Artists.Items) == 0 {
		s.observer.observe("find_artist", "not_found")
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
	}

	artist, err := mapArtist(resp.Artists.Items[0])
	if err != nil {
		s.observer.observe("find_artist", "error")
		return nil, err
	}

	s.observer.observe("find_artist", "ok")
	return artist, nil
}

// FindTrack searches for a track and maps the first result.
func (s *SpotifyService) FindTrack(ctx context.Context, name string) (*models.Song, error) {
	var resp SpotifySearchResponse
	if err := s.search(ctx, name, "track", &resp); err != nil {
		s.observer.observe("find_track", "error")
		return nil, err
	}

	if resp.Tracks == nil {
		s.observer.observe("find_track", "error")
		return nil, fmt.Errorf("%w: search response missing tracks", shared.ErrCatalog)
	}
	if len(resp.Tracks.Items) == 0 {
		s.observer.observe("find_track", "not_found")
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, name)
	}

	song, err := mapTrack(resp.Tracks.Items[0])
	if err != nil {
		s.observer.observe("find_track", "error")
		return nil, err
	}

	s.observer.observe("find_track", "ok")
	return song, nil
}

// TopTracks returns the names of the artist's first five top tracks.
func (s *SpotifyService) TopTracks(ctx context.Context, artistID, market string) ([]string, error) {
	query := url.Values{}
	if market != "" {
		query.Set("market", market)
	}

	var resp SpotifyTopTracks
	endpoint := fmt.Sprintf("/artists/%s/top-tracks", url.PathEscape(artistID))
	if err := s.doRequest(ctx, endpoint, query, &resp); err != nil {
		s.observer.observe("top_tracks", "error")
		return nil, err
	}

	names := make([]string, 0, topTracksLimit)
	for _, track := range resp.Tracks {
		if len(names) == topTracksLimit {
			break
		}
		if track.Name == "" {
			s.observer.observe("top_tracks", "error")
			return nil, fmt.Errorf("%w: top track missing name", shared.ErrCatalog)
		}
		names = append(names, track.Name)
	}

	s.observer.observe("top_tracks", "ok")
	return names, nil
}

func (s *SpotifyService) search(ctx context.Context, q, kind string, result any) error {
	query := url.Values{}
	query.Set("q", q)
	query.Set("type", kind)
	query.Set("limit", "1")
	return s.doRequest(ctx, "/search", query, result)
}

// doRequest performs an authenticated GET against the Web API and decodes a 2xx body into result.
//
// Transport errors and 5xx responses are retried up to maxRetries times.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", shared.ErrCatalog, ctx.Err())
			case <-time.After(time.Duration(attempt) * s.retryWait):
			}
		}

		retry, err := s.attempt(ctx, apiURL, result)
		if err == nil {
			return nil
		}
		if !retry || ctx.Err() != nil {
			return err
		}
		lastErr = err
	}

	return lastErr
}

func (s *SpotifyService) attempt(ctx context.Context, apiURL string, result any) (bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrCatalog, err)
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return false, fmt.Errorf("%w: failed to create request: %v", shared.ErrCatalog, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("%w: request failed: %v", shared.ErrCatalog, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if inv, ok := s.tokens.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode >= 500, fmt.Errorf("%w: spotify API error: status %d", shared.ErrCatalog, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, fmt.Errorf("%w: failed to decode response: %v", shared.ErrCatalog, err)
	}

	return false, nil
}

func mapArtist(a SpotifyArtist) (*models.Artist, error) {
	if err := requireFields("artist", map[string]string{
		"id":                    a.ID,
		"name":                  a.Name,
		"external_urls.spotify": a.ExternalURLs.Spotify,
	}); err != nil {
		return nil, err
	}

	return &models.Artist{
		CatalogID:  a.ID,
		Name:       a.Name,
		URL:        a.ExternalURLs.Spotify,
		Popularity: a.Popularity,
	}, nil
}

func mapTrack(t SpotifyTrack) (*models.Song, error) {
	if err := requireFields("track", map[string]string{
		"id":                    t.ID,
		"name":                  t.Name,
		"external_urls.spotify": t.ExternalURLs.Spotify,
	}); err != nil {
		return nil, err
	}
	if len(t.Artists) == 0 || t.Artists[0].Name == "" {
		return nil, fmt.Errorf("%w: track result missing artists[0].name", shared.ErrCatalog)
	}

	return &models.Song{
		CatalogID:  t.ID,
		Title:      t.Name,
		ArtistName: t.Artists[0].Name,
		URL:        t.ExternalURLs.Spotify,
		Popularity: t.Popularity,
	}, nil
}

// requireFields fails on the first empty field, checked in a stable order.
func requireFields(kind string, fields map[string]string) error {
	var errs []error
	for _, key := range []string{"id", "name", "external_urls.spotify"} {
		if v, ok := fields[key]; ok && v == "" {
			errs = append(errs, fmt.Errorf("%s result missing %s", kind, key))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", shared.ErrCatalog, errors.Join(errs...))
	}
	return nil
}
