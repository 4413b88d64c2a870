package main

import "runtime/debug"

// version is injected at release time:
// go build -ldflags "-X main.version=v1.2.3"
var version = ""

// getVersion prefers the ldflags value, then the module version recorded
// by "go install pkg@version", and falls back to "dev" for local builds.
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}
