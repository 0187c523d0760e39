//go:build !linux

package fileops

func renameNoReplace(src, dst string) error {
	return renameChecked(src, dst)
}
