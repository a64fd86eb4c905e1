// Package server hosts the Fiber HTTP service and request middleware chain
// that wire the 3-digit image routes into the read-through resolver and the
// disk cache store. It bootstraps Fiber, attaches recover/request-ID
// middlewares, and exposes router constructors that other packages
// (main, tests/integration) can reuse. Future phases may extend this package
// with TLS, metrics endpoints, or admin surfaces, so keep exports narrow and
// accept explicit dependencies.
package server
