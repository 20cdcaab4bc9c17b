//go:build devconfig

package runtimeconfig

// DevMode reports whether the binary was built with the devconfig tag.
const DevMode = true
