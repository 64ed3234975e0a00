// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// ProjectRoot returns the directory reported file paths are made relative to:
// the enclosing git work tree, else the nearest module root, else dir.
func ProjectRoot(ctx context.Context, dir string) string {
	for _, find := range []func(context.Context, string) string{gitTopLevel, nearestGoModDir} {
		if root := find(ctx, dir); root != "" {
			return root
		}
	}

	return dir
}

func gitTopLevel(ctx context.Context, dir string) string {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--show-toplevel")

	out, err := cmd.Output()
	if err != nil {
		return ""
	}

	if out = bytes.TrimSpace(out); len(out) == 0 {
		return ""
	}

	return filepath.Clean(string(out))
}

// nearestGoModDir walks upwards from start. Cancellation is not checked; the walk is bounded by the path depth.
func nearestGoModDir(_ context.Context, start string) string {
	for dir := filepath.Clean(start); ; {
		if isRegularFile(filepath.Join(dir, "go.mod")) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}

func isRegularFile(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.Mode().IsRegular()
}
