// Package firewall inspects the packet-filtering backends installed on the
// host and decides which one is in charge.
//
// Four backends are probed independently: ufw, iptables, nftables and
// firewalld. A failing probe only affects its own backend record.
package firewall

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
	"github.com/Guliveer/hostscope/internal/parser"
	"github.com/Guliveer/hostscope/internal/platform"
)

// Known install locations per backend, searched in order.
var (
	ufwPaths         = []string{"/usr/sbin/ufw", "/sbin/ufw", "/usr/bin/ufw"}
	iptablesPaths    = []string{"/usr/sbin/iptables", "/sbin/iptables", "/usr/bin/iptables"}
	nftPaths         = []string{"/usr/sbin/nft", "/sbin/nft", "/usr/bin/nft"}
	firewallCmdPaths = []string{"/usr/bin/firewall-cmd", "/usr/sbin/firewall-cmd", "/bin/firewall-cmd"}
)

// Inspector probes the firewall backends through a Platform.
type Inspector struct {
	platform platform.Platform
	layout   parser.IptablesLayout
	logger   *zap.Logger
}

// NewInspector creates an Inspector. layout pins the iptables column set;
// parser.IptablesLayoutAuto detects it from the listing.
func NewInspector(p platform.Platform, layout parser.IptablesLayout, logger *zap.Logger) *Inspector {
	if layout == "" {
		layout = parser.IptablesLayoutAuto
	}
	return &Inspector{platform: p, layout: layout, logger: logger}
}

// Inspect probes all four backends and selects the active one.
func (i *Inspector) Inspect(ctx context.Context) models.FirewallState {
	state := models.FirewallState{
		Timestamp: time.Now().UTC(),
		UFW:       i.probeUFW(ctx),
		Iptables:  i.probeIptables(ctx),
		Nftables:  i.probeNftables(ctx),
		Firewalld: i.probeFirewalld(ctx),
	}
	state.ActiveFirewall = SelectActive(state)
	return state
}

// SelectActive returns the backend in charge: ufw if active, then iptables
// if any chain holds rules, then nftables if its ruleset is non-empty, then
// firewalld if running. FirewallUnknown when none qualifies.
func SelectActive(state models.FirewallState) models.FirewallKind {
	switch {
	case state.UFW.Active:
		return models.FirewallUFW
	case hasRules(state.Iptables):
		return models.FirewallIptables
	case hasRules(state.Nftables):
		return models.FirewallNftables
	case state.Firewalld.Active:
		return models.FirewallFirewalld
	default:
		return models.FirewallUnknown
	}
}

func hasRules(b models.FirewallBackend) bool {
	return b.Rules != nil && b.Rules.HasRules()
}

func (i *Inspector) probeUFW(ctx context.Context) models.FirewallBackend {
	b := models.FirewallBackend{Rules: models.UFWRules{Lines: []string{}}}
	path, ok := i.locate(ufwPaths)
	if !ok {
		return notInstalled(b, "ufw")
	}
	b.Installed = true

	out, err := i.platform.Run(ctx, path, "status")
	if err != nil {
		return i.failed(b, "ufw", err)
	}
	b.Active = parser.ParseUFWStatus(string(out))

	out, err = i.platform.Run(ctx, path, "status", "verbose")
	if err != nil {
		return i.failed(b, "ufw", err)
	}
	b.Rules = parser.ParseUFWRules(string(out))
	b.Availability = models.Available()
	return b
}

func (i *Inspector) probeIptables(ctx context.Context) models.FirewallBackend {
	b := models.FirewallBackend{Rules: models.IptablesRules{Chains: []models.IptablesChain{}}}
	path, ok := i.locate(iptablesPaths)
	if !ok {
		return notInstalled(b, "iptables")
	}
	b.Installed = true

	out, err := i.platform.Run(ctx, path, "-L", "-n", "-v")
	if err != nil {
		return i.failed(b, "iptables", err)
	}
	rules := parser.ParseIptables(string(out), i.layout)
	b.Rules = rules
	b.Active = rules.HasRules()
	b.Availability = models.Available()
	return b
}

func (i *Inspector) probeNftables(ctx context.Context) models.FirewallBackend {
	b := models.FirewallBackend{Rules: models.NftRuleset{Text: models.NoRulesMarker}}
	path, ok := i.locate(nftPaths)
	if !ok {
		return notInstalled(b, "nftables")
	}
	b.Installed = true

	out, err := i.platform.Run(ctx, path, "list", "ruleset")
	if err != nil {
		return i.failed(b, "nftables", err)
	}
	ruleset := parser.ParseNftRuleset(string(out))
	b.Rules = ruleset
	b.Active = ruleset.HasRules()
	b.Availability = models.Available()
	return b
}

func (i *Inspector) probeFirewalld(ctx context.Context) models.FirewallBackend {
	b := models.FirewallBackend{Rules: models.FirewalldRules{Lines: []string{}}}
	path, ok := i.locate(firewallCmdPaths)
	if !ok {
		return notInstalled(b, "firewalld")
	}
	b.Installed = true

	// firewall-cmd --state exits non-zero and prints "not running" when the
	// daemon is stopped.
	out, err := i.platform.Run(ctx, path, "--state")
	b.Active = parser.ParseFirewalldState(string(out))
	if !b.Active {
		if err != nil && strings.TrimSpace(string(out)) != "not running" {
			return i.failed(b, "firewalld", err)
		}
		b.Availability = models.Available()
		return b
	}

	out, err = i.platform.Run(ctx, path, "--list-all")
	if err != nil {
		return i.failed(b, "firewalld", err)
	}
	b.Rules = parser.ParseFirewalldRules(string(out))
	b.Availability = models.Available()
	return b
}

func (i *Inspector) locate(paths []string) (string, bool) {
	for _, p := range paths {
		if i.platform.Executable(p) {
			return p, true
		}
	}
	return "", false
}

func notInstalled(b models.FirewallBackend, name string) models.FirewallBackend {
	b.Installed = false
	b.Active = false
	b.Availability = models.Unavailable(models.ReasonNotInstalled, name+" executable not found")
	return b
}

// failed marks a backend whose command failed. An executable that vanished
// between the path probe and the call counts as not installed.
func (i *Inspector) failed(b models.FirewallBackend, name string, err error) models.FirewallBackend {
	reason := platform.Reason(err)
	i.logger.Warn("Firewall probe failed",
		zap.String("backend", name),
		zap.String("reason", string(reason)),
		zap.Error(err),
	)
	if reason == models.ReasonNotInstalled {
		return notInstalled(b, name)
	}
	b.Active = false
	b.Availability = models.Unavailable(reason, err.Error())
	return b
}
