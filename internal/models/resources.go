package models

import "time"

// ResourceSample is a point-in-time reading of host resource usage, written
// to resource_usage.json. Nothing is retained between samples except the
// network counters used for deltas.
type ResourceSample struct {
	Timestamp time.Time     `json:"timestamp"`
	CPU       CPUSample     `json:"cpu"`
	Memory    MemorySample  `json:"memory"`
	Disk      DiskSample    `json:"disk"`
	Network   NetworkSample `json:"network"`
	Sensors   SensorSample  `json:"sensors"`
	Boot      BootInfo      `json:"boot"`
	Sessions  []UserSession `json:"sessions"`

	// Unavailable names the readings whose collector failed this cycle.
	Unavailable []string `json:"unavailable,omitempty"`
}

// CPUSample holds CPU utilization and topology.
type CPUSample struct {
	Percent       float64   `json:"percent"`
	PerCore       []float64 `json:"per_core"`
	LogicalCount  int       `json:"logical_count"`
	PhysicalCount int       `json:"physical_count"`
	Load1         float64   `json:"load1"`
	Load5         float64   `json:"load5"`
	Load15        float64   `json:"load15"`
}

// MemorySample holds RAM and swap usage in bytes.
type MemorySample struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	Percent     float64 `json:"percent"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
	SwapPercent float64 `json:"swap_percent"`
}

// DiskInfo represents usage for a single disk/partition.
type DiskInfo struct {
	Mount   string  `json:"mount"`
	Device  string  `json:"device,omitempty"`
	Fs      string  `json:"fs,omitempty"`
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}

// DiskSample holds the root filesystem and every local partition.
type DiskSample struct {
	Root       *DiskInfo  `json:"root"`
	Partitions []DiskInfo `json:"partitions"`
}

// InterfaceCounters are the cumulative counters of one network interface.
type InterfaceCounters struct {
	Name        string `json:"name"`
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	Errin       uint64 `json:"errin"`
	Errout      uint64 `json:"errout"`
}

// NetworkSample holds network counters and the public address.
type NetworkSample struct {
	BytesSent  uint64              `json:"bytes_sent"`
	BytesRecv  uint64              `json:"bytes_recv"`
	DeltaSent  uint64              `json:"delta_sent"`
	DeltaRecv  uint64              `json:"delta_recv"`
	Interfaces []InterfaceCounters `json:"interfaces"`
	PublicIP   string              `json:"public_ip"`
}

// SensorReading is one temperature sensor.
type SensorReading struct {
	Key         string  `json:"key"`
	Temperature float64 `json:"temperature"`
}

// SensorSample holds temperature sensors. CPUMax is nil when no CPU sensor
// was found.
type SensorSample struct {
	Readings []SensorReading `json:"readings"`
	CPUMax   *float64        `json:"cpu_max"`
}

// BootInfo holds the last boot time and the uptime.
type BootInfo struct {
	BootTime      time.Time `json:"boot_time"`
	UptimeSeconds uint64    `json:"uptime_seconds"`
}

// UserSession is a currently logged-in user.
type UserSession struct {
	User     string    `json:"user"`
	Terminal string    `json:"terminal"`
	Host     string    `json:"host"`
	Started  time.Time `json:"started"`
}
