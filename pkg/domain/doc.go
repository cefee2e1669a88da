/*
Package domain contains the protocol types shared by the router, the handlers and
every transport.

It is kept free of I/O and persistence, following Hexagonal Architecture principles.

# Key Entities

  - Channel: a named, one-directional conduit (openDialog, savePreset, savePresetResponse...).
  - Message: the closed set of outbound messages, one Go type per channel.
  - Envelope: the {"channel", "payload"} wire frame used by all transports.
  - Result: the {"data"} / {"error"} envelope returned on request/response channels.
  - Preset: a stored key and its JSON payload.
  - Boot: the startup snapshot (storage capability and existing keys).
*/
package domain
