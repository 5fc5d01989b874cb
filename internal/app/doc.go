// Package app contains the preprocessor's run lifecycle. It defines the App
// struct and its configuration, and wires the emitter and launcher runner
// together, decoupled from any specific entrypoint like a CLI.
package app
