package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"photosync/internal/repositories"
	"photosync/internal/shared"
)

// tokenProvider names the row in the tokens table holding the Google token.
const tokenProvider = "google"

// googleScopes covers read-only Drive access plus Photos library writes.
var googleScopes = []string{
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/photoslibrary",
}

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer

	// db and tokens are populated lazily by openDatabase
	db     *sql.DB
	tokens *repositories.TokenRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
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

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, albumsCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig loads the config file named by the command's --config flag,
// falling back to the runner's existing config when the file is absent.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current", "path", path, "error", err)
		return
	}
	r.config = config
}

// openDatabase opens the SQLite database and runs any pending migrations.
// The connection is cached for the life of the runner.
func (r *Runner) openDatabase() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.tokens = repositories.NewTokenRepository(db)
	return db, nil
}

// Close releases the runner's database connection, if any.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.tokens = nil
	return err
}

// oauthConfig builds the Google OAuth2 config from credentials in the
// runner's config file.
func (r *Runner) oauthConfig() (*oauth2.Config, error) {
	creds := r.config.Credentials.Google
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: google client_id and client_secret must be set in config", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://%s:%d/callback", r.config.Server.Host, r.config.Server.Port)
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       googleScopes,
		Endpoint:     googleEndpoint,
	}, nil
}

// authenticatedClient returns an HTTP client carrying the stored Google
// token. Refreshed tokens are written back to the database as they are
// issued.
func (r *Runner) authenticatedClient(ctx context.Context) (*http.Client, error) {
	if _, err := r.openDatabase(); err != nil {
		return nil, err
	}

	config, err := r.oauthConfig()
	if err != nil {
		return nil, err
	}

	token, err := r.tokens.Get(tokenProvider)
	if err != nil {
		return nil, fmt.Errorf("%w: run 'photosync auth login' first", shared.ErrNotAuthenticated)
	}

	source := &savingTokenSource{
		source: config.TokenSource(ctx, token),
		tokens: r.tokens,
		logger: r.logger,
		last:   token,
	}

	return oauth2.NewClient(ctx, source), nil
}

// savingTokenSource persists refreshed tokens so the next invocation picks
// up the new access token without re-running the login flow.
type savingTokenSource struct {
	source oauth2.TokenSource
	tokens *repositories.TokenRepository
	logger *log.Logger
	last   *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	if s.last == nil || token.AccessToken != s.last.AccessToken {
		s.last = token
		if saveErr := s.tokens.Save(tokenProvider, token); saveErr != nil {
			s.logger.Warn("failed to persist refreshed token", "error", saveErr)
		}
	}

	return token, nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
