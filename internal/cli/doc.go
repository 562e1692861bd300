// Package cli implements the simdriver command tree.
//
// Every device command resolves the configured simulator lazily, so
// configuration errors surface before any xcrun call is made. Results go to
// stdout (plain values or JSON); logs go to stderr.
package cli
