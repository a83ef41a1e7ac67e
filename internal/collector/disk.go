// Disk usage collector: gathers root filesystem usage and per-mount usage
// of local partitions. Uses gopsutil for cross-platform disk metrics.
package collector

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
)

// pseudoFSTypes lists filesystem types excluded from the partition list:
// virtual filesystems and network mounts.
var pseudoFSTypes = map[string]bool{
	// Virtual / system filesystems
	"devfs":         true,
	"autofs":        true,
	"nullfs":        true,
	"tmpfs":         true,
	"sysfs":         true,
	"proc":          true,
	"procfs":        true,
	"devtmpfs":      true,
	"cgroup":        true,
	"cgroup2":       true,
	"overlay":       true,
	"squashfs":      true,
	"fuse.snapfuse": true,
	"nsfs":          true,
	"pstore":        true,
	"debugfs":       true,
	"tracefs":       true,
	"securityfs":    true,
	"configfs":      true,
	"fusectl":       true,
	"mqueue":        true,
	"hugetlbfs":     true,
	"binfmt_misc":   true,
	"efivarfs":      true,
	"bpf":           true,
	"ramfs":         true,

	// Network / remote filesystems
	"nfs":            true,
	"nfs4":           true,
	"cifs":           true,
	"smbfs":          true,
	"fuse.sshfs":     true,
	"fuse.rclone":    true,
	"9p":             true,
	"afs":            true,
	"ncpfs":          true,
	"glusterfs":      true,
	"lustre":         true,
	"ceph":           true,
	"fuse.ceph":      true,
	"gpfs":           true,
	"pvfs2":          true,
	"fuse.s3fs":      true,
	"fuse.gcsfuse":   true,
	"fuse.blobfuse":  true,
	"davfs2":         true,
}

// isSystemMount returns true for mount points that belong to the OS or to
// container runtimes rather than to the machine's storage.
func isSystemMount(mount string) bool {
	systemPrefixes := []string{
		"/snap/",
		"/var/lib/docker/",
		"/var/lib/containers/",
		"/run/",
		"/System/Volumes/",
		"/private/var/vm",
	}
	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(mount, prefix) {
			return true
		}
	}
	return false
}

// localPartitions drops pseudo, network and system mounts.
func localPartitions(partitions []disk.PartitionStat) []disk.PartitionStat {
	var local []disk.PartitionStat
	for _, p := range partitions {
		if pseudoFSTypes[p.Fstype] || isSystemMount(p.Mountpoint) {
			continue
		}
		local = append(local, p)
	}
	return local
}

// DiskCollector collects disk usage metrics per mount point.
type DiskCollector struct {
	logger *zap.Logger
}

// NewDiskCollector creates a new disk collector.
func NewDiskCollector(logger *zap.Logger) *DiskCollector {
	return &DiskCollector{logger: logger}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return "disk" }

// Collect gathers a models.DiskSample. Inaccessible partitions are
// skipped; the collector fails only when neither the root filesystem nor
// the partition table can be read.
func (c *DiskCollector) Collect(ctx context.Context) (interface{}, error) {
	sample := models.DiskSample{Partitions: []models.DiskInfo{}}

	var rootErr error
	if usage, err := disk.UsageWithContext(ctx, "/"); err == nil {
		sample.Root = &models.DiskInfo{
			Mount:   "/",
			Fs:      usage.Fstype,
			Total:   usage.Total,
			Used:    usage.Used,
			Free:    usage.Free,
			Percent: usage.UsedPercent,
		}
	} else {
		rootErr = err
	}

	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		if rootErr != nil {
			return nil, err
		}
		c.logger.Debug("Partition table unavailable", zap.Error(err))
		return sample, nil
	}

	for _, p := range localPartitions(partitions) {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			c.logger.Debug("Skipping inaccessible partition",
				zap.String("mount", p.Mountpoint),
				zap.Error(err))
			continue
		}
		// Skip partitions with 0 total bytes (some virtual mounts report 0 size)
		if usage.Total == 0 {
			continue
		}
		sample.Partitions = append(sample.Partitions, models.DiskInfo{
			Mount:   p.Mountpoint,
			Device:  p.Device,
			Fs:      p.Fstype,
			Total:   usage.Total,
			Used:    usage.Used,
			Free:    usage.Free,
			Percent: usage.UsedPercent,
		})
	}

	return sample, nil
}

// IsAvailable returns true: disk metrics are available on all platforms.
func (c *DiskCollector) IsAvailable() bool { return true }
