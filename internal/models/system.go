package models

import "time"

// OSInfo describes the running operating system.
type OSInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Kernel  string `json:"kernel"`
	Arch    string `json:"arch"`
}

// SystemInfo is the system_info.json artifact, refreshed once a day.
type SystemInfo struct {
	Timestamp      time.Time         `json:"timestamp"`
	Hostname       string            `json:"hostname"`
	OS             OSInfo            `json:"os"`
	HardwareInfo   HardwareInventory `json:"hardware_info"`
	HardwareStatus Availability      `json:"hardware_status"`
	Users          AccountSummary    `json:"users"`
	UsersStatus    Availability      `json:"users_status"`
	LoginHistory   []LoginRecord     `json:"login_history"`
	LoginStatus    Availability      `json:"login_status"`
}
