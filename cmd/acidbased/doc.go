// Command acidbased runs the acidbase HTTP API.
//
// Configuration is layered: built-in defaults, then a YAML file (--config,
// or <home>/config.yaml), then ACIDBASE_* environment variables, then flags.
// The token signing secret has no default and must be provided, usually as
// ACIDBASE_AUTH_JWT_SECRET.
//
// The server stops on SIGINT or SIGTERM, draining in-flight requests for up
// to server.shutdown_timeout before exiting.
package main
