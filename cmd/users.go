package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/favtunes/internal/formatter"
	"github.com/desertthunder/favtunes/internal/shared"
	"github.com/desertthunder/favtunes/internal/tasks"
	"github.com/urfave/cli/v3"
)

// UsersList prints the directory in ID order.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(cmd, false, func(e *tasks.DirectoryEngine) error {
		dir, err := e.ListUsers(ctx)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(dir, true)
		}

		if len(dir) == 0 {
			r.writePlain("%s\n", styles.Help("No users yet."))
			return nil
		}

		r.writePlainHeader(fmt.Sprintf("Users (%d)", len(dir)))
		for _, id := range dir.IDs() {
			u := dir[id]
			r.writePlain("%3d  %-24s %-32s %d artists, %d songs\n",
				u.ID, u.Name, u.Email, len(u.FavoriteArtists), len(u.FavoriteSongs))
		}
		return nil
	})
}

// UsersExport writes one user's favorites to a file, or every user's with --all.
func (r *Runner) UsersExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	if cmd.Bool("all") {
		return r.withEngine(cmd, false, func(e *tasks.DirectoryEngine) error {
			return r.bulkExport(ctx, e, tasks.BulkExportOpts{
				Format:     format,
				OutputDir:  output,
				NumWorkers: int(cmd.Int("workers")),
			})
		})
	}

	if !cmd.IsSet("id") {
		return fmt.Errorf("%w: --id or --all is required", shared.ErrMissingArgument)
	}
	id := int(cmd.Int("id"))

	return r.withEngine(cmd, false, func(e *tasks.DirectoryEngine) error {
		user, err := e.GetUser(ctx, id)
		if err != nil {
			return err
		}

		path, err := formatter.WriteExport(user, format, output)
		if err != nil {
			return err
		}

		r.logger.Info("favorites exported", "id", id, "format", format, "path", path)
		r.writePlain("%s exported %s's favorites to %s\n", styles.OK("✓"), user.Name, path)
		return nil
	})
}

func (r *Runner) bulkExport(ctx context.Context, e *tasks.DirectoryEngine, opts tasks.BulkExportOpts) error {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := e.BulkExport(ctx, progress, opts)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	status := styles.OK("✓")
	if result.FailedExports > 0 {
		status = styles.Warn("!")
	}
	r.writePlain("\n%s %d/%d users exported to %s\n", status, result.SuccessfulExports, result.TotalUsers, result.OutputDirectory)
	return nil
}
