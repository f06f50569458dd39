// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/shared"
)

// FakeCatalog is an in-memory test double for [services.Catalog].
//
// Lookups are case-insensitive on the search term. Err, when set, is returned from every call.
type FakeCatalog struct {
	Artists map[string]models.Artist
	Songs   map[string]models.Song
	Tracks  map[string][]string // keyed by artist CatalogID
	Err     error

	mu    sync.Mutex
	calls int
}

// NewFakeCatalog returns a catalog seeded with a couple of well-known entries.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		Artists: map[string]models.Artist{
			"queen": {CatalogID: "a-queen", Name: "Queen", URL: "https://open.spotify.com/artist/a-queen", Popularity: Ptr(82)},
			"adele": {CatalogID: "a-adele", Name: "Adele", URL: "https://open.spotify.com/artist/a-adele"},
		},
		Songs: map[string]models.Song{
			"bohemian rhapsody": {
				CatalogID: "t-bohemian", Title: "Bohemian Rhapsody", ArtistName: "Queen",
				URL: "https://open.spotify.com/track/t-bohemian", Popularity: Ptr(90),
			},
			"hello": {CatalogID: "t-hello", Title: "Hello", ArtistName: "Adele", URL: "https://open.spotify.com/track/t-hello"},
		},
		Tracks: map[string][]string{
			"a-queen": {"Bohemian Rhapsody", "Don't Stop Me Now", "Under Pressure", "Another One Bites the Dust", "We Will Rock You"},
		},
	}
}

// Calls reports how many catalog operations were invoked.
func (f *FakeCatalog) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeCatalog) record() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.Err
}

func (f *FakeCatalog) FindArtist(ctx context.Context, name string) (*models.Artist, error) {
	if err := f.record(); err != nil {
		return nil, err
	}
	a, ok := f.Artists[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
	}
	return &a, nil
}

func (f *FakeCatalog) FindTrack(ctx context.Context, name string) (*models.Song, error) {
	if err := f.record(); err != nil {
		return nil, err
	}
	s, ok := f.Songs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, name)
	}
	return &s, nil
}

func (f *FakeCatalog) TopTracks(ctx context.Context, artistID, market string) ([]string, error) {
	if err := f.record(); err != nil {
		return nil, err
	}
	return f.Tracks[artistID], nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
