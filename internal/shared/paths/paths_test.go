package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDevicePaths(t *testing.T) {
	dev := Device{Root: "/devices", UDID: "ABC"}

	assert.Equal(t, "/devices/ABC", dev.Dir())
	assert.Equal(t, "/devices/ABC/data", dev.DataDir())
	assert.Equal(t, "/devices/ABC/data/Library/Keychains", dev.KeychainsDir())
}

func TestDevicePathsPreferReportedDataDir(t *testing.T) {
	dev := Device{Root: "/devices", UDID: "ABC", Data: "/sets/ci/ABC/data"}

	assert.Equal(t, "/sets/ci/ABC/data", dev.DataDir())
	assert.Equal(t, "/sets/ci/ABC/data/Library/Keychains", dev.KeychainsDir())
}

func TestSafariDataGlobs(t *testing.T) {
	globs := SafariDataGlobs("/c", true)
	assert.Len(t, globs, len(SafariDataFiles))
	assert.Contains(t, globs, "/c/Library/Cookies/*.binarycookies")
	// ".." escapes Library into the container's tmp folder
	assert.Contains(t, globs, filepath.Join("/c", "tmp", MobileSafariBundleID, "*"))

	withPrefs := SafariDataGlobs("/c", false)
	assert.Len(t, withPrefs, len(SafariDataFiles)+1)
	assert.Equal(t, "/c/Library/Preferences/*.plist", withPrefs[len(withPrefs)-1])
}

func TestSafariPrefs(t *testing.T) {
	assert.Equal(t, "/c/Library/Preferences/com.apple.mobilesafari.plist", SafariPrefs("/c"))
}
