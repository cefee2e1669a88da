/*
Package hostbridge connects a self-contained UI core to host capabilities it
cannot reach directly: modal dialogs, file export, persistent preset storage
and diagnostics.

The UI core talks to the host only through named channels. Every outbound
message is routed to one handler; the storage channels answer with exactly one
response on their paired "…Response" channel, wrapped in a Result envelope:

	{"channel":"loadPreset","payload":"dark"}
	{"channel":"loadPresetResponse","payload":{"data":{"key":"dark","payload":{...}}}}
	{"channel":"loadPresetResponse","payload":{"error":"Key was not found"}}

# Architecture

The Bridge follows Hexagonal Architecture. Host capabilities are ports
(pkg/ports) implemented by adapters (pkg/adapters); the core (pkg/router,
pkg/storage, pkg/dialog, pkg/export, pkg/diagnostics) never touches I/O
directly. A single Runner goroutine handles messages in receipt order and
flushes the frame queue, so handlers and frame callbacks never run in parallel.

# Usage

	bridge, err := hostbridge.New(
		hostbridge.WithStore(memory.NewStore()),
		hostbridge.WithDocument(doc),
	)
	if err != nil {
		log.Fatal(err)
	}
	go bridge.Run(ctx)

	_ = bridge.Submit(ctx, domain.LoadPreset{Key: "dark"}, outbox)

Transports (HTTP + SSE, WebSocket, stdio, MCP) live under pkg/adapters and
only need the Bridge's Submit, Call, Boot and Bound methods.
*/
package hostbridge
