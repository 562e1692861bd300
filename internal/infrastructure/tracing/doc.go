/*
Package tracing correlates the log lines of one simdriver operation.

A command opens a span, every control tool invocation made under its
context logs the same trace id, and the finished span is written with its
duration and outcome.

	tracer := tracing.New("simdriver", logger)
	span, ctx := tracer.StartSpan(ctx, "apps launch")
	defer tracer.Submit(span)

	logger.Debug("spawning", tracing.Fields(ctx)...)

Spans are logged synchronously. Failed spans are logged at warn level,
successful ones at debug.
*/
package tracing
