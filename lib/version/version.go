// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes the build version of the kivinge binary.
package version

import "runtime/debug"

// Version is the release version. Overridden at build time via
// -ldflags "-X github.com/kivinge/kivinge/lib/version.Version=v1.2.3".
var Version = "dev"

// String returns the version, annotated with the VCS revision when the
// binary was built from a checkout and no release version was stamped.
func String() string {
	if Version != "dev" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	revision := ""
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision == "" {
		return Version
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return Version + " (" + revision + ")"
}
