//go:build !windows && !darwin

package app

import "os/exec"

// OpenFile opens path with the desktop's default application.
func OpenFile(path string) error {
	return exec.Command("xdg-open", path).Start()
}
