// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"runtime/debug"
	"strings"
)

// BuildVersion is the latest tagged release of i18ncheck.
const BuildVersion string = "v1.0.0"

const shortRevisionLength = 8

// buildInfo describes the binary, as recorded by the go command.
type buildInfo struct {
	// ModuleVersion is set for binaries built with go install module@version.
	ModuleVersion string
	GoVersion     string
	VcsRevision   string
	VcsTime       string
	VcsModified   bool
}

// Version prefers the module version of installed binaries over BuildVersion.
func (b *buildInfo) Version() string {
	if b.ModuleVersion != "" && b.ModuleVersion != "(devel)" {
		return b.ModuleVersion
	}

	return BuildVersion
}

// Revision returns "<date>-<short hash>[+dirty]", or "unknown" outside a VCS build.
func (b *buildInfo) Revision() string {
	if b.VcsRevision == "" {
		return "unknown"
	}

	date, _, _ := strings.Cut(b.VcsTime, "T")

	rev := b.VcsRevision
	if len(rev) > shortRevisionLength {
		rev = rev[:shortRevisionLength]
	}

	s := date + "-" + rev
	if b.VcsModified {
		s += "+dirty"
	}

	return s
}

func (b *buildInfo) load() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	b.ModuleVersion = info.Main.Version
	b.GoVersion = info.GoVersion

	settings := make(map[string]string, len(info.Settings))
	for _, kv := range info.Settings {
		settings[kv.Key] = kv.Value
	}

	b.VcsRevision = settings["vcs.revision"]
	b.VcsTime = settings["vcs.time"]
	b.VcsModified = settings["vcs.modified"] == "true"
}
