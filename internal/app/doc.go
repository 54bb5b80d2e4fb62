// Package app wires application dependencies for the server and the CLI.
//
// It loads Config through viper, builds the concrete stores, services and
// HTTP server from it, and runs the server until its context ends.
package app
