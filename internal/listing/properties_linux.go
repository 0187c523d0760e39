//go:build linux

package listing

import (
	"io/fs"
	"os/user"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

func statDetails(path string, _ fs.FileInfo, props *Properties) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err == nil {
		props.Accessed = time.Unix(st.Atim.Unix())
		props.Owner = lookupUser(st.Uid)
		props.Group = lookupGroup(st.Gid)
	}
	props.Readable = unix.Access(path, unix.R_OK) == nil
	props.Writable = unix.Access(path, unix.W_OK) == nil
	props.Executable = unix.Access(path, unix.X_OK) == nil
}

func lookupUser(uid uint32) string {
	id := strconv.FormatUint(uint64(uid), 10)
	if u, err := user.LookupId(id); err == nil {
		return u.Username
	}
	return id
}

func lookupGroup(gid uint32) string {
	id := strconv.FormatUint(uint64(gid), 10)
	if g, err := user.LookupGroupId(id); err == nil {
		return g.Name
	}
	return id
}
