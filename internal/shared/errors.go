package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog errors
	ErrAuthFailed     = fmt.Errorf("could not obtain catalog token")
	ErrCatalog        = fmt.Errorf("catalog request failed")
	ErrArtistNotFound = fmt.Errorf("artist not found in catalog")
	ErrSongNotFound   = fmt.Errorf("song not found in catalog")

	// Directory errors
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrDuplicateUser     = fmt.Errorf("a user with that name and email already exists")
	ErrDuplicateFavorite = fmt.Errorf("already in favorites")
	ErrFavoriteNotFound  = fmt.Errorf("not in favorites")
	ErrNoFavorites       = fmt.Errorf("user has no favorites")

	// Storage errors
	ErrStorage = fmt.Errorf("storage failure")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrAPIRequest      = fmt.Errorf("API request failed")
)
