// Package observability provides request logging, panic recovery, and
// Prometheus metrics for the HTTP surface.
package observability
