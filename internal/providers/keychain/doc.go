// Package keychain snapshots and resets the keychain store of a simulator.
//
// Backups are zstd compressed tarballs of the device's Library/Keychains
// folder. Only the latest backup is kept and restoring consumes it.
package keychain
