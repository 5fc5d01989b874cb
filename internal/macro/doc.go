// Package macro resolves `$(name rest)` tokens found in launch descriptors.
//
// The set of macros is fixed: arg, env, optenv, find, anon and eval. Every
// macro is a pure function of its raw argument string, the process
// environment and the document's argument store, all of which live on a
// Resolver that the reducer passes down explicitly.
//
// eval expressions use HCL native expression syntax evaluated with no
// variables in scope and only the macros exposed as functions, so an
// expression can do arithmetic, comparisons, boolean logic and macro calls
// but cannot reach anything else on the host.
package macro
