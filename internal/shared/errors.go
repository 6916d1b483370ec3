package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")

	// Pipeline errors. Listing and album resolution are fatal; download,
	// staging and commit are retried before they surface.
	ErrListing         = fmt.Errorf("source listing failed")
	ErrDownload        = fmt.Errorf("download failed")
	ErrStaging         = fmt.Errorf("staging failed")
	ErrCommit          = fmt.Errorf("commit failed")
	ErrAlbumResolution = fmt.Errorf("album resolution failed")
	ErrFilterConfig    = fmt.Errorf("invalid filter configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrAlbumNotFound      = fmt.Errorf("album not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
