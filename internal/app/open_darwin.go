//go:build darwin

package app

import "os/exec"

// OpenFile opens path with the default application.
func OpenFile(path string) error {
	return exec.Command("open", path).Start()
}
