// Package paths provides standardized simulator filesystem locations.
//
// # Directory Structure
//
//	~/Library/Developer/CoreSimulator/Devices/
//	  └── <udid>/
//	      └── data/
//	          └── Library/
//	              └── Keychains/
//
// Safari data lives in its own app container, resolved through the control
// tool at runtime; SafariDataGlobs expands the scrub templates against it.
//
// # Usage
//
//	dev := paths.Device{Root: root, UDID: udid}
//	keychains := dev.KeychainsDir()
//	prefs := paths.SafariPrefs(container)
package paths
