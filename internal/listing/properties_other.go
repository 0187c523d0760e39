//go:build !linux

package listing

import "io/fs"

func statDetails(_ string, info fs.FileInfo, props *Properties) {
	perm := info.Mode().Perm()
	props.Readable = perm&0o400 != 0
	props.Writable = perm&0o200 != 0
	props.Executable = perm&0o100 != 0
}
