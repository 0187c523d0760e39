package thumbnail

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/justyntemme/razorcore/internal/debug"
)

const mountRefresh = 30 * time.Second

type mount struct {
	point  string
	fstype string
}

// VolumePolicy decides whether thumbnails may be generated for a path,
// based on the filesystem type of its mount and a list of disabled prefixes.
type VolumePolicy struct {
	disabledFS    map[string]bool
	disabledPaths []string

	// partitions is replaceable in tests.
	partitions func(ctx context.Context) ([]disk.PartitionStat, error)

	mu     sync.Mutex
	mounts []mount // longest mount point first
	loaded time.Time
}

// NewVolumePolicy creates a policy. Empty arguments allow everything.
func NewVolumePolicy(fstypes, paths []string) *VolumePolicy {
	p := &VolumePolicy{
		disabledFS: make(map[string]bool, len(fstypes)),
		partitions: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, true)
		},
	}
	for _, fs := range fstypes {
		p.disabledFS[strings.ToLower(fs)] = true
	}
	for _, dp := range paths {
		p.disabledPaths = append(p.disabledPaths, filepath.Clean(dp))
	}
	return p
}

// Allows reports whether thumbnails are enabled for path.
func (p *VolumePolicy) Allows(path string) bool {
	if p == nil {
		return true
	}
	clean := filepath.Clean(path)
	for _, dp := range p.disabledPaths {
		if within(clean, dp) {
			return false
		}
	}
	if len(p.disabledFS) == 0 {
		return true
	}
	fstype := p.fstypeOf(clean)
	if p.disabledFS[fstype] {
		debug.Log(debug.THUMB, "volume: %s on %s, thumbnails off", path, fstype)
		return false
	}
	return true
}

func (p *VolumePolicy) fstypeOf(path string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.loaded) > mountRefresh {
		p.reload()
	}
	for _, m := range p.mounts {
		if within(path, m.point) {
			return strings.ToLower(m.fstype)
		}
	}
	return ""
}

// reload reads the mount table. Must hold p.mu.
func (p *VolumePolicy) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	parts, err := p.partitions(ctx)
	p.loaded = time.Now()
	if err != nil {
		debug.Log(debug.THUMB, "volume: reading mounts: %v", err)
		return
	}
	mounts := make([]mount, 0, len(parts))
	for _, part := range parts {
		mounts = append(mounts, mount{point: filepath.Clean(part.Mountpoint), fstype: part.Fstype})
	}
	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i].point) > len(mounts[j].point)
	})
	p.mounts = mounts
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	if path == dir {
		return true
	}
	if dir == string(filepath.Separator) {
		return strings.HasPrefix(path, dir)
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
