package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/favtunes/internal/formatter"
	"github.com/desertthunder/favtunes/internal/models"
)

// BulkExportOpts contains configuration for exporting every user's favorites.
type BulkExportOpts struct {
	Format     string // Export format: json, csv, markdown, txt
	OutputDir  string // Base output directory (default: favtunes_export_{epoch})
	NumWorkers int    // Concurrent workers (default: 4, max 10)
}

// UserExportResult is the outcome of exporting one user.
type UserExportResult struct {
	UserID  int    `json:"user_id"`
	Name    string `json:"name"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	Format            string             `json:"format"`
	TotalUsers        int                `json:"total_users"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"-"`
	Results           []UserExportResult `json:"results"`
}

// BulkExport writes one favorites file per user using a worker pool, then a manifest.
//
// The directory is read once under the engine lock; file writing happens outside it.
func (e *DirectoryEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = "json"
	}
	if _, err := formatter.Export(models.User{}, opts.Format); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("favtunes_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	dir, err := e.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	sendProgress(prog, loadDirectoryUpdate(len(dir)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ids := dir.IDs()
	result := &BulkExportResult{
		Format:          opts.Format,
		TotalUsers:      len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]UserExportResult, 0, len(ids)),
	}

	jobs := make(chan models.User, len(ids))
	results := make(chan UserExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	for _, id := range ids {
		jobs <- dir[id]
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Name, res.File))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.Name, res.Error))
		}
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].UserID < result.Results[j].UserID })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("bulk export finished", "users", result.TotalUsers, "failed", result.FailedExports, "dir", opts.OutputDir)
	return result, nil
}

// exportWorker is a worker goroutine that exports users from the jobs channel.
func (e *DirectoryEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan models.User,
	results chan<- UserExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for user := range jobs {
		res := UserExportResult{UserID: user.ID, Name: user.Name}
		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			results <- res
			continue
		}

		path := filepath.Join(opts.OutputDir, formatter.DefaultFilename(user, opts.Format))
		file, err := formatter.WriteExport(user, opts.Format, path)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.File = file
			res.Success = true
		}
		results <- res
	}
}
