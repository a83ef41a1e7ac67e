package scheduler

import (
	"time"

	"github.com/Guliveer/hostscope/internal/collector"
	"github.com/Guliveer/hostscope/internal/models"
)

// collectorFailed marks a section whose collector returned an error or was
// not registered.
var collectorFailed = models.Unavailable(models.ReasonCommandFailed, "collector produced no result")

// assembleSystemInfo maps the daily collector results into system_info.json.
func assembleSystemInfo(results map[string]interface{}, now time.Time) models.SystemInfo {
	info := models.SystemInfo{
		Timestamp:      now.UTC(),
		HardwareInfo:   models.NewHardwareInventory(),
		HardwareStatus: collectorFailed,
		Users:          models.NewAccountSummary(),
		UsersStatus:    collectorFailed,
		LoginHistory:   []models.LoginRecord{},
		LoginStatus:    collectorFailed,
	}

	if id, ok := results["osinfo"].(collector.HostIdentity); ok {
		info.Hostname = id.Hostname
		info.OS = id.OS
	}
	if hw, ok := results["hardware"].(models.HardwareResult); ok {
		info.HardwareInfo = hw.Inventory
		info.HardwareStatus = hw.Availability
	}
	if acc, ok := results["accounts"].(models.AccountResult); ok {
		info.Users = acc.Summary
		info.UsersStatus = acc.Availability
	}
	if logins, ok := results["logins"].(models.LoginResult); ok {
		if logins.Records != nil {
			info.LoginHistory = logins.Records
		}
		info.LoginStatus = logins.Availability
	}
	return info
}

// resourceCollectors are the periodic collectors that feed resource_usage.json.
var resourceCollectors = map[string]bool{
	"cpu":       true,
	"memory":    true,
	"disk":      true,
	"network":   true,
	"sensors":   true,
	"boot":      true,
	"sessions":  true,
	"public_ip": true,
}

// assembleResources maps the periodic collector results into
// resource_usage.json. Registered resource collectors without a result are
// listed in Unavailable.
func assembleResources(results map[string]interface{}, registered []string, now time.Time) models.ResourceSample {
	sample := models.ResourceSample{
		Timestamp: now.UTC(),
		Sessions:  []models.UserSession{},
	}
	sample.Network.PublicIP = collector.UnknownIP

	if v, ok := results["cpu"].(models.CPUSample); ok {
		sample.CPU = v
	}
	if v, ok := results["memory"].(models.MemorySample); ok {
		sample.Memory = v
	}
	if v, ok := results["disk"].(models.DiskSample); ok {
		sample.Disk = v
	}
	if v, ok := results["network"].(models.NetworkSample); ok {
		sample.Network = v
		sample.Network.PublicIP = collector.UnknownIP
	}
	if v, ok := results["sensors"].(models.SensorSample); ok {
		sample.Sensors = v
	}
	if v, ok := results["boot"].(models.BootInfo); ok {
		sample.Boot = v
	}
	if v, ok := results["sessions"].([]models.UserSession); ok {
		sample.Sessions = v
	}
	if ip, ok := results["public_ip"].(string); ok && ip != "" {
		sample.Network.PublicIP = ip
	}

	for _, name := range registered {
		if !resourceCollectors[name] {
			continue
		}
		if _, ok := results[name]; !ok {
			sample.Unavailable = append(sample.Unavailable, name)
		}
	}
	return sample
}
