/*
Package resilience provides a circuit breaker for flaky collaborators.

# Overview

The process monitor spawns a command inside the device on every poll tick.
When the device is gone those spawns fail slowly; the breaker turns a run of
failures into fast ErrCircuitOpen results until a cooldown has passed.

# Usage

	breaker := resilience.New("ps", resilience.Settings{
		MaxTrials: 1,
		Cooldown:  2 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	procs, err := resilience.Call(ctx, breaker, func(ctx context.Context) ([]types.ProcessEntry, error) {
		return listProcesses(ctx)
	})

# States

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
