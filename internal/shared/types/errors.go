package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotImplemented        = errors.New("not implemented")
	ErrNotBooted             = errors.New("device is not in Booted state")
	ErrNotInstalled          = errors.New("application is not installed")
	ErrSystemRootUnavailable = errors.New("IPHONE_SIMULATOR_ROOT cannot be retrieved")
	ErrNoBackupAvailable     = errors.New("no keychains backup available for restore")
	ErrKeychainClear         = errors.New("keychain cleanup failed")
	ErrVerificationTimeout   = errors.New("verification timed out")
	ErrInvalidBundleID       = errors.New("invalid bundle identifier")
	ErrInvalidUDID           = errors.New("invalid device udid")
	ErrInvalidPattern        = errors.New("invalid exclude pattern")
)

// ToolError is a failed control tool invocation. It is returned to callers
// unmodified so the tool's own diagnostics stay intact.
type ToolError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s failed", e.Command, strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		fmt.Fprintf(&sb, " with exit code %d", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&sb, ": %s", stderr)
	} else if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Verification operations
const (
	OpLaunch  = "launch"
	OpOpenURL = "openurl"
)

// TimeoutError reports a post-condition that was never observed within budget
type TimeoutError struct {
	Op      string
	Subject string
	Budget  time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	switch e.Op {
	case OpLaunch:
		return fmt.Sprintf("app '%s' is not running after %dms timeout", e.Subject, e.Budget.Milliseconds())
	case OpOpenURL:
		return fmt.Sprintf("mobile Safari cannot open '%s' after %.3fs: its process does not exist in the list of simulator processes",
			e.Subject, e.Elapsed.Seconds())
	default:
		return fmt.Sprintf("%s '%s' not verified after %s", e.Op, e.Subject, e.Budget)
	}
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrVerificationTimeout
}
