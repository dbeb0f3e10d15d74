// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !linux && !darwin

package fileinfo

import (
	"os"
	"time"
)

// accessTime falls back to mtime on platforms (notably Windows, where an
// access time requires a separate GetFileAttributesEx/BY_HANDLE_FILE_INFORMATION
// call) that aren't worth a cgo-free syscall path for this agent.
func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
