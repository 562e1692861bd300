// Package safari controls Mobile Safari inside a simulator: opening URLs with
// process verification, wiping browsing data, patching preferences and
// locating the Web Inspector socket.
package safari
