// package models defines the data model for the favtunes directory service
package models

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/desertthunder/favtunes/internal/shared"
)

// User is one entry of the directory.
//
// Favorite lists are nil until the first add and are kept (possibly empty) afterwards.
type User struct {
	ID              int         `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	FavoriteArtists []ArtistRef `json:"favorite_artists,omitzero"`
	FavoriteSongs   []SongRef   `json:"favorite_songs,omitzero"`
}

// NewUser creates a user without favorites.
func NewUser(id int, name, email string) User {
	return User{ID: id, Name: name, Email: email}
}

// ValidateIdentity checks a name/email pair as accepted by create and update.
func ValidateIdentity(name, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: a valid name and email are required", shared.ErrInvalidInput)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" || !dottedDomain(email) {
		return fmt.Errorf("%w: %q is not a valid email address", shared.ErrInvalidInput, email)
	}
	return nil
}

// dottedDomain reports whether the domain part has at least two non-empty labels.
func dottedDomain(email string) bool {
	domain := email[strings.LastIndex(email, "@")+1:]
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" {
			return false
		}
	}
	return true
}

// SameIdentity reports whether u has exactly the given name and email.
func (u User) SameIdentity(name, email string) bool {
	return u.Name == name && u.Email == email
}

// HasArtist reports whether catalogID is already among the favorite artists.
func (u User) HasArtist(catalogID string) bool {
	for _, a := range u.FavoriteArtists {
		if a.CatalogID == catalogID {
			return true
		}
	}
	return false
}

// HasSong reports whether catalogID is already among the favorite songs.
func (u User) HasSong(catalogID string) bool {
	for _, s := range u.FavoriteSongs {
		if s.CatalogID == catalogID {
			return true
		}
	}
	return false
}

// ArtistRef is a favorite artist as stored on a user.
type ArtistRef struct {
	CatalogID string `json:"catalog_id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
}

// SongRef is a favorite song as stored on a user.
type SongRef struct {
	CatalogID  string `json:"catalog_id"`
	Title      string `json:"title"`
	ArtistName string `json:"artist_name"`
	URL        string `json:"url"`
}

// Artist is the best catalog match for an artist search.
type Artist struct {
	CatalogID  string
	Name       string
	URL        string
	Popularity *int // nil when the catalog omits it
}

// Ref returns the snapshot stored in a favorites list.
func (a Artist) Ref() ArtistRef {
	return ArtistRef{CatalogID: a.CatalogID, Name: a.Name, URL: a.URL}
}

// Song is the best catalog match for a track search.
type Song struct {
	CatalogID  string
	Title      string
	ArtistName string // first listed artist
	URL        string
	Popularity *int
}

// Ref returns the snapshot stored in a favorites list.
func (s Song) Ref() SongRef {
	return SongRef{CatalogID: s.CatalogID, Title: s.Title, ArtistName: s.ArtistName, URL: s.URL}
}

// ArtistInfo is the payload of an artist lookup.
type ArtistInfo struct {
	Name       string   `json:"nombre"`
	Popularity *int     `json:"popularidad"`
	URL        string   `json:"url"`
	TopTracks  []string `json:"top_5_canciones"`
}

// SongInfo is the payload of a song lookup.
type SongInfo struct {
	Title      string `json:"titulo"`
	Artist     string `json:"artista"`
	URL        string `json:"url"`
	Popularity *int   `json:"popularidad"`
}
