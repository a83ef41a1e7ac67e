package parser

import (
	"strings"

	"github.com/Guliveer/hostscope/internal/models"
)

const (
	serviceSuffix = ".service"

	// NoDescription is used for units listed without a description.
	NoDescription = "No description"
)

// ParseUnitList parses `systemctl list-units --type=service --all` output.
// The first line is the column header. Every later line shaped like a loaded
// service unit becomes a record; anything else (not-found units, the legend
// footer, blank lines) is skipped.
func ParseUnitList(output string) []models.ServiceRecord {
	services := []models.ServiceRecord{}

	lines := strings.Split(output, "\n")
	if len(lines) == 0 {
		return services
	}
	for _, line := range lines[1:] {
		if !strings.Contains(line, serviceSuffix) || !strings.Contains(line, "loaded") {
			continue
		}

		fields := strings.Fields(line)
		// Failed units are prefixed with a status bullet.
		if len(fields) > 0 && (fields[0] == "●" || fields[0] == "*") {
			fields = fields[1:]
		}
		if len(fields) < 4 || !strings.HasSuffix(fields[0], serviceSuffix) || fields[1] != "loaded" {
			continue
		}

		description := NoDescription
		if len(fields) > 4 {
			description = strings.Join(fields[4:], " ")
		}
		services = append(services, models.ServiceRecord{
			Name:        strings.TrimSuffix(fields[0], serviceSuffix),
			LoadState:   fields[1],
			ActiveState: fields[2],
			SubState:    fields[3],
			Description: description,
		})
	}
	return services
}
