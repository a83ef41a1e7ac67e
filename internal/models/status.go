// Package models defines the telemetry data structures produced by the agent.
// These structures are serialized to JSON artifacts and shipped to the
// collector as part of a snapshot.
package models

// Status reports whether a probe produced data.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
)

// Reason is a machine-readable code explaining an unavailable result.
type Reason string

const (
	ReasonNotInstalled     Reason = "not_installed"
	ReasonPermissionDenied Reason = "permission_denied"
	ReasonCommandFailed    Reason = "command_failed"
	ReasonUnsupported      Reason = "unsupported"
	ReasonIO               Reason = "io_error"
	ReasonNetwork          Reason = "network_error"
)

// Availability is attached to every collector result so consumers can tell
// an empty result apart from a failed probe.
type Availability struct {
	Status Status `json:"status"`
	Reason Reason `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Available returns an Availability for a successful probe.
func Available() Availability {
	return Availability{Status: StatusOK}
}

// Unavailable returns an Availability for a failed probe.
func Unavailable(reason Reason, detail string) Availability {
	return Availability{Status: StatusUnavailable, Reason: reason, Detail: detail}
}

// OK reports whether the probe succeeded.
func (a Availability) OK() bool { return a.Status == StatusOK }
