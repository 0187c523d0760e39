//go:build windows

package app

import "os/exec"

// OpenFile opens path using the Windows 'start' command.
func OpenFile(path string) error {
	// 'cmd /c start "" "path"' is the standard way to launch files in Windows
	return exec.Command("cmd", "/c", "start", "", path).Start()
}
