/*
Package observability exposes router and store activity as Prometheus metrics
and structured log records.

Metrics registers its collectors on a private registry so several bridges (or
tests) can coexist in one process. Hooks returns domain.LifecycleHooks for the
router; the Metrics value itself is a store middleware Recorder.
*/
package observability
