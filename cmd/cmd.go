// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the favtunes HTTP API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.host and server.port)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand writes the example config and prepares storage
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage: "Create config.toml and initialize storage",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the latest sqlite migration instead",
			},
		},
		Action: r.Setup,
	}
}

// catalogCommand handles direct catalog lookups
func catalogCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		}
	}

	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"spotify"},
		Usage:   "Look up artists and songs in the Spotify catalog",
		Commands: []*cli.Command{
			{
				Name:  "artist",
				Usage: "Show an artist's popularity and top tracks",
				Flags: flags(),
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.CatalogArtist,
			},
			{
				Name:  "song",
				Usage: "Show a song's artist and popularity",
				Flags: flags(),
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.CatalogSong,
			},
		},
	}
}

// usersCommand handles directory inspection and exports
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Inspect and export the user directory",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users in the directory",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UsersList,
			},
			{
				Name:  "export",
				Usage: "Export a user's favorites (or every user's with --all)",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "id",
						Usage: "User ID to export",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every user into --output as a directory",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (or directory with --all)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers for --all",
						Value: 4,
					},
				},
				Action: r.UsersExport,
			},
		},
	}
}

// apiCommand makes raw requests against a running server
func apiCommand(r *Runner) *cli.Command {
	pathArg := func() []cli.Argument {
		return []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		}
	}
	baseFlags := func(withData bool) []cli.Flag {
		flags := []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Base URL of the favtunes API (defaults to server.host:server.port)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output compact JSON",
			},
		}
		if withData {
			flags = append(flags, &cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "JSON request body",
			})
		}
		return flags
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct requests to a running favtunes API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET request to an endpoint",
				Flags:     baseFlags(false),
				Arguments: pathArg(),
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "POST request with a JSON body",
				Flags:     baseFlags(true),
				Arguments: pathArg(),
				Action:    r.APIPost,
			},
			{
				Name:      "put",
				Usage:     "PUT request with a JSON body",
				Flags:     baseFlags(true),
				Arguments: pathArg(),
				Action:    r.APIPut,
			},
			{
				Name:      "delete",
				Usage:     "DELETE request with an optional JSON body",
				Flags:     baseFlags(true),
				Arguments: pathArg(),
				Action:    r.APIDelete,
			},
		},
	}
}
