package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"photosync/internal/server"
	"photosync/internal/shared"
)

// loginTimeout bounds how long the loopback server waits for the callback.
const loginTimeout = 5 * time.Minute

// AuthLogin runs the OAuth2 authorization code flow against Google using a
// temporary loopback server, then stores the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if _, err := r.openDatabase(); err != nil {
		return err
	}

	config, err := r.oauthConfig()
	if err != nil {
		return err
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(config, state)

	router := server.NewBasicRouter()
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handler.Send(server.OAuthResult{})
			r.logger.Error("callback server failed", "addr", addr, "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))

	r.writePlain("Open the following URL to authorize access:\n\n%s\n\n", authURL)
	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	r.logger.Info("waiting for authorization", "addr", addr)

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
		if result.Token == nil {
			return fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
		}
		if result.Token.RefreshToken == "" {
			r.logger.Warn("no refresh token issued, re-auth will be needed when the access token expires")
		}
		if err := r.tokens.Save(tokenProvider, result.Token); err != nil {
			return err
		}
		return r.writePlain("✓ Authentication successful\n")

	case <-time.After(loginTimeout):
		return fmt.Errorf("%w: timed out waiting for authorization", shared.ErrAuthFailed)

	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthStatus reports whether a Google token is stored and still valid.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if _, err := r.openDatabase(); err != nil {
		return err
	}

	token, err := r.tokens.Get(tokenProvider)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		r.writePlain("✗ Not authenticated\n")
		return r.writePlain("Run 'photosync auth login' to authenticate.\n")
	}
	if err != nil {
		return err
	}

	r.writePlain("✓ Authenticated\n")
	if token.Expiry.IsZero() {
		r.writePlain("Access token: no recorded expiry\n")
	} else if token.Valid() {
		r.writePlain("Access token: valid until %s\n", token.Expiry.Local().Format(time.RFC1123))
	} else {
		r.writePlain("Access token: expired %s\n", token.Expiry.Local().Format(time.RFC1123))
	}

	if token.RefreshToken != "" {
		r.writePlain("Refresh token: present, expired tokens renew automatically\n")
	} else {
		r.writePlain("Refresh token: missing, re-run 'photosync auth login' when the access token expires\n")
	}
	return nil
}

// AuthReset deletes the stored Google token.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if _, err := r.openDatabase(); err != nil {
		return err
	}

	if err := r.tokens.Delete(tokenProvider); err != nil {
		return err
	}

	r.logger.Info("stored token deleted")
	return r.writePlain("✓ Authentication reset\n")
}
