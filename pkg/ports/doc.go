/*
Package ports defines the driven ports (interfaces) for the host bridge.

These interfaces decouple the router and its handlers from the host environment,
so every capability can be replaced by an in-memory fake in tests or by a
different backend in production.

# Key Interfaces

  - KVStore / Availability: persistent key/value storage and its capability flag.
  - ElementRegistry / Element: UI surfaces addressed by id (show modally, close, serialize).
  - FrameScheduler: "run this callback before the next repaint".
  - Downloader: transient downloadable objects with explicit release.
  - DiagnosticSink: arbitrary structured log payloads.
  - Outbox: the reply path back into one UI instance.
*/
package ports
