package version

// Version is the semantic version of the curator binary. It is overridden at
// build time via -ldflags.
var Version = "0.1.0-dev"
