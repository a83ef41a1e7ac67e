// Temperature sensor collector: gathers every valid thermal reading and the
// hottest CPU sensor, which represents the worst-case thermal state.
package collector

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
)

// Sensor name substrings used to identify CPU temperature sensors.
// Linux: coretemp_core_0_input, k10temp_tctl_input, acpitz_temp1_input, zenpower_tctl_input
var cpuSensorKeys = []string{
	"cpu", "core", "package",
	"tctl", "tdie", "k10temp", "coretemp",
	"acpitz", "zenpower",
}

// minValidTemp is the minimum temperature (°C) considered valid.
const minValidTemp = 0.0

// maxValidTemp is the maximum temperature (°C) considered valid.
// Readings above this are likely sensor errors.
const maxValidTemp = 150.0

// SensorCollector collects temperature readings.
type SensorCollector struct {
	logger *zap.Logger
}

// NewSensorCollector creates a new sensor collector.
func NewSensorCollector(logger *zap.Logger) *SensorCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SensorCollector{logger: logger}
}

// Name returns the collector identifier.
func (c *SensorCollector) Name() string { return "sensors" }

// Collect gathers a models.SensorSample. Hosts without sensors (most VMs)
// get an empty sample rather than an error.
func (c *SensorCollector) Collect(ctx context.Context) (interface{}, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		// gopsutil returns partial readings together with warnings.
		c.logger.Debug("Temperature sensors not fully available", zap.Error(err))
	}

	sample := summarizeSensors(temps)
	if sample.CPUMax != nil {
		c.logger.Debug("CPU temperature collected", zap.Float64("temp_c", *sample.CPUMax))
	}
	return sample, nil
}

// IsAvailable returns true: always registered; returns an empty sample if
// sensors are unavailable.
func (c *SensorCollector) IsAvailable() bool { return true }

// summarizeSensors keeps the valid readings and computes the hottest CPU
// sensor.
func summarizeSensors(temps []host.TemperatureStat) models.SensorSample {
	sample := models.SensorSample{Readings: []models.SensorReading{}}
	var cpuMax float64
	cpuFound := false

	for _, t := range temps {
		if !isValidTemperature(t.Temperature) {
			continue
		}
		sample.Readings = append(sample.Readings, models.SensorReading{
			Key:         t.SensorKey,
			Temperature: t.Temperature,
		})

		if matchesSensor(strings.ToLower(t.SensorKey), cpuSensorKeys) {
			if !cpuFound || t.Temperature > cpuMax {
				cpuMax = t.Temperature
				cpuFound = true
			}
		}
	}

	if cpuFound {
		sample.CPUMax = &cpuMax
	}
	return sample
}

// matchesSensor checks if the sensor name contains any of the given key substrings.
func matchesSensor(name string, keys []string) bool {
	for _, key := range keys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

// isValidTemperature returns true if the temperature is within a plausible range.
func isValidTemperature(temp float64) bool {
	return temp > minValidTemp && temp <= maxValidTemp
}
