package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Guliveer/hostscope/internal/models"
)

// DMI structure types kept in the inventory.
const (
	dmiTypeBIOS         = 0
	dmiTypeSystem       = 1
	dmiTypeProcessor    = 4
	dmiTypeMemoryDevice = 17
)

var dmiTypePattern = regexp.MustCompile(`DMI type (\d+)`)

// Markers dmidecode prints when it cannot read the tables.
var (
	dmiUnsupportedMarkers = []string{
		"No SMBIOS nor DMI entry point found",
		"Can't read memory from /dev/mem",
	}
	dmiDeniedMarkers = []string{
		"Permission denied",
		"Operation not permitted",
	}
)

// ParseDMI builds a HardwareInventory from `dmidecode` output. Empty output
// and outputs that say the tables are missing or unreadable yield an empty
// inventory and an unavailable status; they are never errors.
func ParseDMI(output string) (models.HardwareInventory, models.Availability) {
	inv := models.NewHardwareInventory()

	if strings.TrimSpace(output) == "" {
		return inv, models.Unavailable(models.ReasonUnsupported, "empty dmidecode output")
	}
	if status, failed := DMIFailure(output); failed {
		return inv, status
	}

	sections := ScanSections(output, func(line string) bool {
		return strings.HasPrefix(line, "Handle")
	})
	for _, s := range sections {
		m := dmiTypePattern.FindStringSubmatch(s.Header)
		if m == nil {
			continue
		}
		typ, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		switch typ {
		case dmiTypeBIOS:
			inv.BIOS = s.Fields
		case dmiTypeSystem:
			inv.System = s.Fields
		case dmiTypeMemoryDevice:
			inv.MemoryDevices = append(inv.MemoryDevices, s.Fields)
		case dmiTypeProcessor:
			inv.Processors = append(inv.Processors, s.Fields)
		}
	}

	return inv, models.Available()
}

// DMIFailure reports whether dmidecode output or stderr says the tables are
// missing or unreadable, and the matching unavailable status.
func DMIFailure(text string) (models.Availability, bool) {
	for _, marker := range dmiDeniedMarkers {
		if strings.Contains(text, marker) {
			return models.Unavailable(models.ReasonPermissionDenied, marker), true
		}
	}
	for _, marker := range dmiUnsupportedMarkers {
		if strings.Contains(text, marker) {
			return models.Unavailable(models.ReasonUnsupported, marker), true
		}
	}
	return models.Availability{}, false
}
