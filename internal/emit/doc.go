// Package emit turns reduced launch descriptors into files on disk and into
// the argument vector of the external launcher.
//
// A batch is handled in two phases. Prepare parses and reduces every input
// in memory; Commit then writes the derived files of the documents that
// changed. Nothing is written if any document fails to reduce, and a failed
// write removes the derived files already written by the same Commit.
package emit
