// Package web implements an HTMX-based web application mirroring the TUI functionality.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app replicates the four-view TUI workflow using server-side rendering
// with HTMX for dynamic updates. Each view corresponds to a template and handler:
//
//  1. Album List: Server-rendered table with hx-get for album detail
//  2. Sync Confirm: Modal confirmation with hx-post trigger
//  3. Progress Monitor: SSE (Server-Sent Events) streaming per-file results
//  4. Results Display: Final status with uploaded/skipped/errored breakdown
//
// Core Components
//
//   - HTTP Server: net/http server with html/template rendering
//   - Service Integration: Uses the same services and tasks.SyncEngine as the TUI
//   - Session Management: Cookie-based sessions for OAuth state
//   - SSE Handler: Streams real-time progress during syncs
//
// Routes
//
//	GET  /                       → Album list view (requires auth)
//	GET  /auth/google            → OAuth initiation
//	GET  /auth/google/callback   → OAuth completion
//	GET  /albums/{id}            → HTMX partial: album media items
//	POST /sync                   → Start sync, return SSE endpoint
//	GET  /sync/{id}/stream       → SSE progress stream
//	GET  /sync/{id}/result       → Final result view
//
// Templates
//
//   - base.html: Layout with navigation, auth status
//   - albums.html: Table with hx-get on rows
//   - confirm.html: Partial template for the folder/album confirmation
//   - progress.html: SSE consumer with progress bar
//   - results.html: Uploaded/skipped/errored breakdown
//
// # State Management
//
// Unlike the TUI's in-memory state, the web app persists state in:
//   - Session cookies: Authentication state, OAuth CSRF token
//   - sync_runs records: Per-file results persisted across requests
//   - In-memory channels: SSE connections for active syncs
//
// # Progress Streaming
//
// Sync progress uses Server-Sent Events:
//  1. POST /sync starts a run, returns run ID
//  2. Client opens SSE connection to /sync/{id}/stream
//  3. Handler launches goroutine running SyncEngine.Run
//  4. Progress channel updates stream as SSE events
//  5. On completion, send "done" event with redirect URL
//
// Authentication Flow
//
//  1. User visits /, redirected to /auth/google if not authenticated
//  2. OAuth dance stores tokens via repositories.TokenRepository
//  3. Session middleware validates tokens on protected routes
//  4. Expired tokens trigger reauthorization flow
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server and SSE
//   - gorilla/sessions or similar: Cookie management
//
// Implementation Tasks
//
//  1. HTTP server setup with route registration
//  2. Template structure with HTMX integration
//  3. Session middleware for auth state
//  4. Album list handler with service integration
//  5. Album detail handler (HTMX partial)
//  6. Sync endpoint recording a sync_runs row
//  7. SSE handler streaming progress updates
//  8. Result handler displaying per-file outcomes
//  9. OAuth handlers wrapping the existing Google auth
//  10. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Mock source and target services for album/file data
//   - Mock tasks.SyncEngine for sync runs
//   - Validate HTMX headers and response structure
//   - Test SSE stream formatting
package web
