package listing

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Drive is a mounted volume offered as a starting location.
type Drive struct {
	Name string
	Path string
}

var virtualFS = map[string]bool{
	"tmpfs": true, "devtmpfs": true, "cgroup": true, "cgroup2": true,
	"proc": true, "sysfs": true, "overlay": true, "squashfs": true,
}

var virtualRoots = []string{"/sys", "/proc", "/dev", "/run", "/snap", "/boot"}

// Drives lists real mounted volumes. The root volume always comes first.
func Drives(ctx context.Context) ([]Drive, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	var drives []Drive
	seen := make(map[string]bool)
	for _, p := range parts {
		if seen[p.Mountpoint] || virtualFS[p.Fstype] || underVirtualRoot(p.Mountpoint) {
			continue
		}
		seen[p.Mountpoint] = true
		drives = append(drives, Drive{Name: driveName(p.Mountpoint), Path: p.Mountpoint})
	}
	if !seen["/"] && filepath.Separator == '/' {
		drives = append(drives, Drive{Name: driveName("/"), Path: "/"})
	}

	slices.SortStableFunc(drives, func(a, b Drive) int {
		switch {
		case a.Path == "/" && b.Path != "/":
			return -1
		case b.Path == "/" && a.Path != "/":
			return 1
		}
		return strings.Compare(a.Path, b.Path)
	})
	return drives, nil
}

func underVirtualRoot(mount string) bool {
	for _, root := range virtualRoots {
		if mount == root || strings.HasPrefix(mount, root+"/") {
			return true
		}
	}
	return false
}

func driveName(mount string) string {
	switch {
	case mount == "/":
		return "/ (Root)"
	case mount == "/home":
		return "Home"
	case strings.HasPrefix(mount, "/media/"), strings.HasPrefix(mount, "/mnt/"), strings.HasPrefix(mount, "/Volumes/"):
		return filepath.Base(mount)
	default:
		return mount
	}
}
