// package services implements clients for the Google Drive and Google Photos
// APIs behind the narrow SourceService and TargetService interfaces consumed
// by the sync engine.
//
// Both clients speak plain REST over an authenticated [net/http.Client]
// (typically built from an [golang.org/x/oauth2] token source). They hold no
// sync state: pagination tokens, dedup sets, and retry budgets live with the
// caller.
package services
