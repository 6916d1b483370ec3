// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize config file, database, and migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SetupDatabase,
	}
}

// authCommand handles the Google OAuth flow and token storage.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Google authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Google using OAuth2",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authentication state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "reset",
				Usage:  "Delete the stored Google token",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthReset,
			},
		},
	}
}

// syncCommand runs a folder-to-album sync.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync a Drive folder's media into a Photos album",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "folder",
				UsageText: "Drive folder ID or URL",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "album-name",
				Aliases: []string{"a"},
				Usage:   "Target album title or URL (created when missing)",
			},
			&cli.StringFlag{
				Name:  "album-id",
				Usage: "Target album ID (skips title lookup)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "skip-errors",
				Usage: "Record per-file errors and keep going instead of aborting",
			},
			&cli.StringSliceFlag{
				Name:  "file-types",
				Usage: "Extension allow-list, e.g. --file-types jpg --file-types png",
			},
			&cli.StringFlag{
				Name:  "regex-filter",
				Usage: "Only sync filenames matching this pattern",
			},
			&cli.Int64Flag{
				Name:  "min-size-kb",
				Usage: "Minimum file size in KB",
			},
			&cli.Int64Flag{
				Name:  "max-size-mb",
				Usage: "Maximum file size in MB",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Do not open the album in a browser after syncing",
			},
			&cli.BoolFlag{
				Name:  "reset-auth",
				Usage: "Delete the stored token and re-run the login flow first",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write a per-file report to this path (.json or .csv)",
			},
		},
		Action: r.Sync,
	}
}

// albumsCommand lists and opens Photos albums.
func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "Google Photos album operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List albums in the Photos library",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AlbumsList,
			},
			{
				Name:  "browse",
				Usage: "Open an album in the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "album",
						UsageText: "Album ID or title",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.AlbumsBrowse,
			},
		},
	}
}

// historyCommand surfaces past sync runs from the local database.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past sync runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show per-file results for a run ID",
			},
		},
		Action: r.History,
	}
}

// tuiCommand launches the interactive album picker.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactively pick an album and sync a folder into it",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "folder",
				UsageText: "Drive folder ID or URL",
			},
		},
		Flags:  []cli.Flag{configFlag()},
		Action: r.TUI,
	}
}
