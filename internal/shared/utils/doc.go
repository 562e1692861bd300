// Package utils provides validation and polling helpers.
//
// Polling:
//   - WaitFor checks observable state on a fixed interval within a budget
//   - PollTimeoutError tells a negative outcome from a failing check channel
//
// Validation:
//   - Bundle identifiers, device UDIDs, URLs
//   - NormalizePatterns for comma-joined pattern lists
//
// Example Usage:
//
//	err := utils.WaitFor(ctx, utils.PollOptions{Timeout: 10 * time.Second, Interval: 300 * time.Millisecond},
//	    func(ctx context.Context) (bool, error) { return m.IsAppRunning(ctx, bundleID) })
package utils
