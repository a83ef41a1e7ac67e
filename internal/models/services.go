package models

import "time"

// ServiceRecord is one unit of the service manager listing.
type ServiceRecord struct {
	Name        string `json:"name"`
	LoadState   string `json:"load_state"`
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
	Description string `json:"description"`
}

// ServiceInventory is the services.json artifact. Services keep the order
// in which systemd listed them.
type ServiceInventory struct {
	Timestamp    time.Time       `json:"timestamp"`
	Services     []ServiceRecord `json:"services"`
	Availability Availability    `json:"availability"`
}
