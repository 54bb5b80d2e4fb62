// Package commands defines the acidbase CLI and wires dependencies for subcommands.
//
// Commands
//
//   - solve     Compute a titration curve locally
//   - simulate  Run a simulation on a server and store it
//   - register  Create an account on a server
//   - login     Log in and cache the bearer token
//   - history   List your stored simulations
//   - show      Print a stored simulation and its results
//   - serve     Run the API server in-process
//
// # Implementation
//
// The root command loads configuration through viper (defaults, config file,
// ACIDBASE_* environment, then flags) and builds a logger before any
// subcommand runs. Commands that talk to a server build an API client that
// sends the token cached by login.
package commands
