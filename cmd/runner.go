package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtunes/internal/repositories"
	"github.com/desertthunder/favtunes/internal/server"
	"github.com/desertthunder/favtunes/internal/services"
	"github.com/desertthunder/favtunes/internal/shared"
	"github.com/desertthunder/favtunes/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	catalog    services.Catalog
	store      repositories.Store
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	metrics    *server.Metrics
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Catalog, Store and API are built from Config on demand when nil.
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    services.Catalog
	Store      repositories.Store
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Catalog.Timeout}
	}

	return &Runner{
		config:     opts.Config,
		catalog:    opts.Catalog,
		store:      opts.Store,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		metrics:    server.NewMetrics(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, catalogCommand, usersCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// configFor returns the runner config, or the file named by an explicit --config flag.
func (r *Runner) configFor(cmd *cli.Command) (*shared.Config, error) {
	if !cmd.IsSet("config") {
		return r.config, nil
	}

	path := cmd.String("config")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	config, err := shared.ResolveConfig(path)
	if err != nil {
		return nil, err
	}
	r.config = config
	shared.SetLogLevel(r.logger, config.LogLevel())
	return config, nil
}

// openStore returns the injected store or one built from config. The closer releases any database handle.
func (r *Runner) openStore(config *shared.Config) (repositories.Store, func() error, error) {
	noop := func() error { return nil }
	if r.store != nil {
		return r.store, noop, nil
	}

	switch config.Storage.Driver {
	case "file", "":
		return repositories.NewFileStore(config.Storage.Path), noop, nil
	case "sqlite":
		db, err := r.openDatabase(config.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewSQLiteStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, config.Storage.Driver)
	}
}

func (r *Runner) openDatabase(path string) (*sql.DB, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", shared.ErrStorage, err)
	}

	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to run migrations: %v", shared.ErrStorage, err)
	}
	return db, nil
}

// catalogFor returns the injected catalog or a Spotify client built from config.
func (r *Runner) catalogFor(config *shared.Config) (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	tokens, err := services.NewTokenCache(services.TokenCacheOpts{
		ClientID:     config.Credentials.Spotify.ClientID,
		ClientSecret: config.Credentials.Spotify.ClientSecret,
		TokenURL:     config.Catalog.TokenURL,
		HTTPClient:   r.httpClient,
		Observer:     r.metrics.ObserveToken,
	})
	if err != nil {
		return nil, err
	}

	spotify, err := services.NewSpotifyService(services.SpotifyOpts{
		BaseURL:    config.Catalog.APIURL,
		Tokens:     tokens,
		HTTPClient: r.httpClient,
		RateLimit:  config.Catalog.RateLimit,
		MaxRetries: config.Catalog.MaxRetries,
		Observer:   r.metrics.ObserveCatalog,
	})
	if err != nil {
		return nil, err
	}

	r.catalog = spotify
	return spotify, nil
}

// engine wires a [tasks.DirectoryEngine]. withCatalog is false for commands that never reach the catalog.
func (r *Runner) engine(cmd *cli.Command, withCatalog bool) (*tasks.DirectoryEngine, func() error, error) {
	config, err := r.configFor(cmd)
	if err != nil {
		return nil, nil, err
	}

	var catalog services.Catalog
	if withCatalog {
		if catalog, err = r.catalogFor(config); err != nil {
			return nil, nil, err
		}
	}

	store, closer, err := r.openStore(config)
	if err != nil {
		return nil, nil, err
	}

	return tasks.NewDirectoryEngine(store, catalog, r.logger, config.Catalog.Market), closer, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", styles.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}

// withEngine runs fn against a wired engine and releases the store afterwards.
func (r *Runner) withEngine(cmd *cli.Command, withCatalog bool, fn func(*tasks.DirectoryEngine) error) error {
	engine, closer, err := r.engine(cmd, withCatalog)
	if err != nil {
		return err
	}
	defer closer()
	return fn(engine)
}
