// Package server exposes the REST API: the unified song feed, playlist and
// library CRUD, and catalog pass-through search.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers method-qualified [http.ServeMux] patterns,
// so path parameters are read with [http.Request.PathValue] and handlers can
// dispatch on [http.Request.Pattern].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Error Mapping
//
// Store errors are translated to HTTP statuses with [errors.Is]: not-found
// becomes 404, duplicate membership 409, the protected Favorites delete 403,
// and invalid input 400. Catalog failures never surface as errors; the
// pass-through endpoints return empty result sets instead.
package server
