// Package client provides an HTTP implementation of the domain.APIClient
// interface used by the acidbase CLI.
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. Non-2xx statuses are returned as *StatusError carrying the
// server's message, the HTTP method and the path to aid diagnostics.
package client
