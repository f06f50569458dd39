package repositories

import (
	"context"

	"github.com/desertthunder/favtunes/internal/models"
)

// Store loads and saves the whole user directory as one document.
//
// Implementations do no locking; callers serialise load/mutate/save cycles.
// Every failure wraps [shared.ErrStorage].
type Store interface {
	Load(ctx context.Context) (models.Directory, error)
	Save(ctx context.Context, dir models.Directory) error
}
