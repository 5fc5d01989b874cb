// Package launchdoc holds the in-memory model of a launch descriptor: an
// ordered element tree that the reducer mutates in place, plus the XML
// parsing and serialization around it.
//
// Attribute order is preserved from input to output so derived files stay
// diffable against their sources. Elements switched off by a conditional are
// kept in the tree with Inactive set; on disk they carry the "_" tag prefix
// that the downstream launcher ignores.
package launchdoc
