package models

// HardwareInventory holds the DMI tables the agent cares about.
type HardwareInventory struct {
	BIOS          map[string]string   `json:"bios"`
	System        map[string]string   `json:"system"`
	MemoryDevices []map[string]string `json:"memory_devices"`
	Processors    []map[string]string `json:"processors"`
}

// NewHardwareInventory returns an empty inventory whose collections are
// non-nil, so it serializes as {} and [] rather than null.
func NewHardwareInventory() HardwareInventory {
	return HardwareInventory{
		BIOS:          map[string]string{},
		System:        map[string]string{},
		MemoryDevices: []map[string]string{},
		Processors:    []map[string]string{},
	}
}

// IsEmpty reports whether no section was captured.
func (h HardwareInventory) IsEmpty() bool {
	return len(h.BIOS) == 0 && len(h.System) == 0 &&
		len(h.MemoryDevices) == 0 && len(h.Processors) == 0
}

// HardwareResult is the output of the hardware collector.
type HardwareResult struct {
	Inventory    HardwareInventory
	Availability Availability
}
