package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/favtunes/internal/shared"
	"github.com/desertthunder/favtunes/internal/tasks"
	"github.com/urfave/cli/v3"
)

func popularity(p *int) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *p)
}

// CatalogArtist looks up an artist and its top tracks.
func (r *Runner) CatalogArtist(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	return r.withEngine(cmd, true, func(e *tasks.DirectoryEngine) error {
		r.logger.Debug("catalog lookup", "artist", name)

		info, err := e.ArtistInfo(ctx, name)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(info, cmd.Bool("pretty"))
		}

		r.writePlainHeader(info.Name)
		r.writePlain("Popularity: %s\n", popularity(info.Popularity))
		r.writePlain("URL: %s\n\n", info.URL)
		r.writePlain("Top tracks:\n")
		for i, track := range info.TopTracks {
			r.writePlain("  %d. %s\n", i+1, track)
		}
		return nil
	})
}

// CatalogSong looks up a song.
func (r *Runner) CatalogSong(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: song name", shared.ErrMissingArgument)
	}

	return r.withEngine(cmd, true, func(e *tasks.DirectoryEngine) error {
		r.logger.Debug("catalog lookup", "song", name)

		info, err := e.SongInfo(ctx, name)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(info, cmd.Bool("pretty"))
		}

		r.writePlainHeader(info.Title)
		r.writePlain("Artist: %s\n", info.Artist)
		r.writePlain("Popularity: %s\n", popularity(info.Popularity))
		r.writePlain("URL: %s\n", info.URL)
		return nil
	})
}
