// Package config loads the optional YAML file that sets site defaults for
// the preprocessor: which launcher executables to run, the derived file
// suffix, logging, and a default web server port.
//
// The file is found through the --config flag or, failing that, the
// XLAUNCH_CONFIG environment variable. Without either, built-in defaults
// apply. Command-line flags always override file values.
package config
