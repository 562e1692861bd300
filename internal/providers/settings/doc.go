// Package settings patches preference files inside a simulator.
//
// UpdateSettings is idempotent: values are compared after a round trip
// through the plist codec, and the file is rewritten (atomically, via rename)
// only when at least one key actually changes.
package settings
