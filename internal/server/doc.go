// Package server provides HTTP routing, middleware, and the JSON handlers for the favtunes API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses a chi mux internally, so path parameters ({id}) and route patterns
// are available to handlers and to the metrics middleware.
//
// # Handlers
//
// [DirectoryHandler] maps each endpoint onto one [Directory] operation. Request and response keys keep the
// public contract (nombre_artista, artistas_favoritos, ...). Failures are written as {"detail": "..."} with the
// status chosen by [StatusFor]: validation, duplicate and catalog failures are 400, missing users and favorites
// are 404, anything else is a 500 with a generic detail and the full error in the log.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes.
// [HealthHandler] and [MetricsHandler] use it to serve /healthz and /metrics.
//
// # Lifecycle
//
// [Server] owns the [http.Server] timeouts and drains in-flight requests when its context is canceled.
package server
