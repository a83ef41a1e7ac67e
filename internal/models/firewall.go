package models

import (
	"encoding/json"
	"time"
)

// FirewallKind names a packet-filtering backend.
type FirewallKind string

const (
	FirewallUFW       FirewallKind = "ufw"
	FirewallIptables  FirewallKind = "iptables"
	FirewallNftables  FirewallKind = "nftables"
	FirewallFirewalld FirewallKind = "firewalld"

	// FirewallUnknown is reported when no backend has rules or is active.
	FirewallUnknown FirewallKind = "unknown"
)

// NoRulesMarker replaces an empty nftables ruleset dump.
const NoRulesMarker = "No rules"

// FirewallRules is the backend-specific rule representation. Each backend
// has its own variant; the JSON encoding carries a "kind" discriminator.
type FirewallRules interface {
	Kind() FirewallKind
	HasRules() bool
}

// UFWRules holds the ALLOW/DENY/REJECT lines of `ufw status verbose`.
type UFWRules struct {
	Lines []string `json:"lines"`
}

func (r UFWRules) Kind() FirewallKind { return FirewallUFW }
func (r UFWRules) HasRules() bool     { return len(r.Lines) > 0 }

func (r UFWRules) MarshalJSON() ([]byte, error) {
	type plain UFWRules
	return json.Marshal(struct {
		Kind FirewallKind `json:"kind"`
		plain
	}{r.Kind(), plain(r)})
}

// IptablesRule is one tabular line of `iptables -L -n -v`.
type IptablesRule struct {
	Packets      string `json:"packets"`
	Bytes        string `json:"bytes"`
	Target       string `json:"target"`
	Protocol     string `json:"protocol"`
	Opt          string `json:"opt,omitempty"`
	InInterface  string `json:"in"`
	OutInterface string `json:"out"`
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	Options      string `json:"options,omitempty"`
}

// IptablesChain is a chain and the rules listed under its header.
type IptablesChain struct {
	Name   string         `json:"name"`
	Policy string         `json:"policy,omitempty"`
	Rules  []IptablesRule `json:"rules"`
}

// IptablesRules is the structured form of the iptables listing.
type IptablesRules struct {
	Chains []IptablesChain `json:"chains"`
}

func (r IptablesRules) Kind() FirewallKind { return FirewallIptables }

// HasRules reports whether any chain carries at least one rule.
func (r IptablesRules) HasRules() bool {
	for _, c := range r.Chains {
		if len(c.Rules) > 0 {
			return true
		}
	}
	return false
}

func (r IptablesRules) MarshalJSON() ([]byte, error) {
	type plain IptablesRules
	return json.Marshal(struct {
		Kind FirewallKind `json:"kind"`
		plain
	}{r.Kind(), plain(r)})
}

// NftRuleset keeps the nftables ruleset verbatim; the rule language is too
// varied to parse structurally.
type NftRuleset struct {
	Text string `json:"text"`
}

func (r NftRuleset) Kind() FirewallKind { return FirewallNftables }
func (r NftRuleset) HasRules() bool     { return r.Text != "" && r.Text != NoRulesMarker }

func (r NftRuleset) MarshalJSON() ([]byte, error) {
	type plain NftRuleset
	return json.Marshal(struct {
		Kind FirewallKind `json:"kind"`
		plain
	}{r.Kind(), plain(r)})
}

// FirewalldRules holds the services/ports/rules lines of the active zone.
type FirewalldRules struct {
	Lines []string `json:"lines"`
}

func (r FirewalldRules) Kind() FirewallKind { return FirewallFirewalld }
func (r FirewalldRules) HasRules() bool     { return len(r.Lines) > 0 }

func (r FirewalldRules) MarshalJSON() ([]byte, error) {
	type plain FirewalldRules
	return json.Marshal(struct {
		Kind FirewallKind `json:"kind"`
		plain
	}{r.Kind(), plain(r)})
}

// FirewallBackend is the probe result for one backend.
type FirewallBackend struct {
	Installed    bool          `json:"installed"`
	Active       bool          `json:"active"`
	Rules        FirewallRules `json:"rules"`
	Availability Availability  `json:"availability"`
}

// FirewallState is the firewall_info.json artifact.
type FirewallState struct {
	Timestamp      time.Time       `json:"timestamp"`
	UFW            FirewallBackend `json:"ufw"`
	Iptables       FirewallBackend `json:"iptables"`
	Nftables       FirewallBackend `json:"nftables"`
	Firewalld      FirewallBackend `json:"firewalld"`
	ActiveFirewall FirewallKind    `json:"active_firewall"`
}
