// Package http implements the HTTP handlers mounted by the application router.
// Handlers stay thin: they parse the request, call a storage collaborator and
// render the result.
//
// # Error Handling
//
// Most handlers have the signature
//
//	func(w http.ResponseWriter, r *http.Request) error
//
// and are adapted with errors.ErrorHandler.Wrap. A returned error is turned
// into an RFC 7807 problem response by the terminal error handler, so a
// handler never writes an error body itself:
//
//	r.Get("/{id}", eh.Wrap(h.Get))
//
// Storage sentinels are translated before they leave the handler:
//
//	storage.ErrInvalidID    -> 400 INVALID_PARAMETER
//	storage.ErrNotFound     -> 404 NOT_FOUND
//	storage.ErrNotConnected -> 503 SERVICE_UNAVAILABLE
//
// Anything else is reported as a 500.
//
// # Handlers
//
//   - ResourceHandler: read-only document collection behind each route group
//   - UploadsHandler: files under the uploads directory, no directory listings
//   - Home: the plain "Home Page" response at /
//   - HealthHandler: liveness and database reachability
package http
