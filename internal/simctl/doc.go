// Package simctl wraps the `xcrun simctl` device-control tool for a single
// simulator.
//
// Every primitive is a thin, single-attempt command invocation. Failures come
// back as *types.ToolError carrying the exit code and stderr; nothing here
// retries or interprets them. Output parsing covers the OpenStep plists
// printed by listapps/appinfo, the JSON device listing and lsof field output.
//
// Example Usage:
//
//	client := simctl.New(udid, simctl.Options{Logger: logger})
//	if err := client.LaunchApp(ctx, "com.apple.mobilesafari"); err != nil {
//	    return err
//	}
package simctl
