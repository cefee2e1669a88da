/*
Package runner implements the cooperative event loop that serializes all host work.

One goroutine owns the loop. It takes messages from a FIFO inbox and hands them to
a Dispatcher (usually the router), and on every frame tick it flushes the frame
queue. Handlers and frame callbacks therefore never run in parallel, and a
callback requested during a frame runs on the following one.

# Key Components

  - Runner: the loop. Submit is fire-and-forget; Call waits for the message to be handled;
    Sync waits for everything enqueued before it.
  - Middleware: wraps the Dispatcher (panic recovery, logging).
  - SignalManager: OS signal handling for the command-line entry points.
  - ValidateFrame: size and encoding checks for raw inbound frames.

# Usage

	r := runner.New(rt,
		runner.WithFrames(queue),
		runner.WithLogger(logger),
	)
	go r.Run(ctx)

	_ = r.Submit(ctx, domain.ListPresets{}, outbox)
*/
package runner
