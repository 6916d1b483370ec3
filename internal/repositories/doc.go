// package repositories implements SQLite persistence for OAuth tokens and
// sync run history.
//
// History rows are reporting data for the history command; the sync engine
// never reads them back, so a fresh run inherits no dedup state.
package repositories
