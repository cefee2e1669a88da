package hostbridge

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/aretw0/hostbridge.Version=...".
var Version = "0.3.0-dev"
