// Package server provides HTTP routing, middleware, and the JSON API over
// snapshots, diffs, and scheduled tasks.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-qualified patterns,
// so path parameters are available through [http.Request.PathValue].
//
// # Authentication
//
// Every /api route is owner-scoped. [RequireAuth] resolves the bearer token
// through a [TokenVerifier] and stores the owner id on the request context;
// handlers read it back with [UserID]. Requests without a valid token are
// rejected before any handler runs.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
