// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags, the optional driver config file and `key:=value`
// bindings into the application's configuration.
package cli
