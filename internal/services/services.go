// package services defines the catalog abstractions used by the directory
//
// Spotify (client credentials), favtunes HTTP API (CLI client)
package services

import (
	"context"

	"github.com/desertthunder/favtunes/internal/models"
)

// Catalog is the external music catalog as seen by the directory.
type Catalog interface {
	// FindArtist returns the first artist matching name.
	// Returns [shared.ErrArtistNotFound] when the search yields no results.
	FindArtist(ctx context.Context, name string) (*models.Artist, error)

	// FindTrack returns the first track matching name.
	// Returns [shared.ErrSongNotFound] when the search yields no results.
	FindTrack(ctx context.Context, name string) (*models.Song, error)

	// TopTracks returns up to five track names for the artist, in catalog order.
	TopTracks(ctx context.Context, artistID, market string) ([]string, error)
}

// TokenSource supplies bearer tokens for catalog requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Observer receives one event per catalog call or token exchange.
// Outcome is one of "ok", "not_found" or "error".
type Observer func(operation, outcome string)

func (o Observer) observe(operation, outcome string) {
	if o != nil {
		o(operation, outcome)
	}
}
