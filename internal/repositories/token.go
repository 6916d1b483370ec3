package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"photosync/internal/shared"
)

// TokenRepository persists one OAuth token per provider.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save upserts the token for a provider.
func (r *TokenRepository) Save(provider string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token for provider %s", shared.ErrInvalidArgument, provider)
	}

	query := `
		INSERT INTO tokens (provider, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, provider, token.AccessToken, token.RefreshToken, token.TokenType, token.Expiry, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Get retrieves the stored token for a provider. Returns
// [shared.ErrNotAuthenticated] when no token has been saved.
func (r *TokenRepository) Get(provider string) (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, token_type, expiry
		FROM tokens
		WHERE provider = ?
	`

	var (
		accessToken  string
		refreshToken string
		tokenType    string
		expiry       sql.NullTime
	)

	err := r.db.QueryRow(query, provider).Scan(&accessToken, &refreshToken, &tokenType, &expiry)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no token stored for %s", shared.ErrNotAuthenticated, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return token, nil
}

// Delete removes the stored token for a provider. Deleting a missing token
// is not an error.
func (r *TokenRepository) Delete(provider string) error {
	_, err := r.db.Exec("DELETE FROM tokens WHERE provider = ?", provider)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
