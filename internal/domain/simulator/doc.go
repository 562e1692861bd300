// Package simulator is the entry point for controlling one iOS simulator.
//
// New reads the device OS version once and binds the controller to a
// generation. Generations form a chain (17+ over 16 over legacy) where each
// link overrides only the operations whose control tool behavior changed:
// install confirmation, the LaunchDaemons root and system app
// identification. Anything a generation leaves alone comes from the next
// older one.
//
// Example Usage:
//
//	dev, err := simulator.New(ctx, cfg, simulator.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer dev.Close()
//	err = dev.LaunchApp(ctx, "com.x.y", types.LaunchOptions{Wait: true})
package simulator
