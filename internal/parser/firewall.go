package parser

import (
	"regexp"
	"strings"

	"github.com/Guliveer/hostscope/internal/models"
)

// ParseUFWStatus reports whether `ufw status` shows an active firewall.
func ParseUFWStatus(output string) bool {
	return strings.Contains(output, "Status: active")
}

// ParseUFWRules returns the ALLOW/DENY/REJECT lines of `ufw status verbose`.
func ParseUFWRules(output string) models.UFWRules {
	rules := models.UFWRules{Lines: []string{}}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// The "Default:" line mentions policies, not rules.
		if strings.HasPrefix(line, "Default:") {
			continue
		}
		if strings.Contains(line, "ALLOW") || strings.Contains(line, "DENY") || strings.Contains(line, "REJECT") {
			rules.Lines = append(rules.Lines, line)
		}
	}
	return rules
}

// IptablesLayout names the column set of `iptables -L -n -v`. iptables-legacy
// and older iptables-nft print an "opt" column that newer iptables-nft drops.
type IptablesLayout string

const (
	IptablesLayoutAuto   IptablesLayout = "auto"
	IptablesLayoutLegacy IptablesLayout = "legacy"
	IptablesLayoutNft    IptablesLayout = "nft"
)

// ValidIptablesLayout reports whether s names a known layout.
func ValidIptablesLayout(s string) bool {
	switch IptablesLayout(s) {
	case IptablesLayoutAuto, IptablesLayoutLegacy, IptablesLayoutNft:
		return true
	}
	return false
}

// iptablesColumns maps the fixed columns of a layout to token indexes.
// Tokens past the destination column are joined into Options.
type iptablesColumns struct {
	packets, bytes, target, prot, opt, in, out, source, destination int
}

var (
	legacyColumns = iptablesColumns{0, 1, 2, 3, 4, 5, 6, 7, 8}
	nftColumns    = iptablesColumns{0, 1, 2, 3, -1, 4, 5, 6, 7}
)

func (c iptablesColumns) minFields() int { return c.destination + 1 }

func columnsFor(layout IptablesLayout) iptablesColumns {
	if layout == IptablesLayoutNft {
		return nftColumns
	}
	return legacyColumns
}

// detectColumns picks the layout from a column header line such as
// "pkts bytes target prot opt in out source destination".
func detectColumns(header string) (iptablesColumns, bool) {
	fields := strings.Fields(header)
	if len(fields) < 2 || fields[0] != "pkts" || fields[1] != "bytes" {
		return iptablesColumns{}, false
	}
	for _, f := range fields {
		if f == "opt" {
			return legacyColumns, true
		}
	}
	return nftColumns, true
}

var chainPolicyPattern = regexp.MustCompile(`\(policy (\S+)`)

// ParseIptables converts `iptables -L -n -v` output into chains and rules.
// Rule lines are attached to the most recent "Chain <name>" header; lines
// with fewer columns than the layout requires are skipped.
func ParseIptables(output string, layout IptablesLayout) models.IptablesRules {
	rules := models.IptablesRules{Chains: []models.IptablesChain{}}

	sections := ScanSections(output, func(line string) bool {
		return strings.HasPrefix(line, "Chain ")
	})
	for _, s := range sections {
		headerFields := strings.Fields(s.Header)
		if len(headerFields) < 2 {
			continue
		}
		chain := models.IptablesChain{
			Name:  headerFields[1],
			Rules: []models.IptablesRule{},
		}
		if m := chainPolicyPattern.FindStringSubmatch(s.Header); m != nil {
			chain.Policy = m[1]
		}

		cols := columnsFor(layout)
		for _, line := range s.Lines {
			if detected, ok := detectColumns(line); ok {
				if layout == IptablesLayoutAuto || layout == "" {
					cols = detected
				}
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < cols.minFields() {
				continue
			}
			rule := models.IptablesRule{
				Packets:      fields[cols.packets],
				Bytes:        fields[cols.bytes],
				Target:       fields[cols.target],
				Protocol:     fields[cols.prot],
				InInterface:  fields[cols.in],
				OutInterface: fields[cols.out],
				Source:       fields[cols.source],
				Destination:  fields[cols.destination],
			}
			if cols.opt >= 0 {
				rule.Opt = fields[cols.opt]
			}
			if len(fields) > cols.minFields() {
				rule.Options = strings.Join(fields[cols.minFields():], " ")
			}
			chain.Rules = append(chain.Rules, rule)
		}
		rules.Chains = append(rules.Chains, chain)
	}
	return rules
}

// ParseNftRuleset keeps the ruleset verbatim, replacing an empty dump with
// models.NoRulesMarker.
func ParseNftRuleset(output string) models.NftRuleset {
	text := strings.TrimSpace(output)
	if text == "" {
		text = models.NoRulesMarker
	}
	return models.NftRuleset{Text: text}
}

// ParseFirewalldState reports whether `firewall-cmd --state` says running.
func ParseFirewalldState(output string) bool {
	return strings.TrimSpace(output) == "running"
}

// ParseFirewalldRules collects the services, ports and rich rules lines of
// `firewall-cmd --list-all`.
func ParseFirewalldRules(output string) models.FirewalldRules {
	rules := models.FirewalldRules{Lines: []string{}}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "services:") || strings.Contains(line, "ports:") || strings.Contains(line, "rules:") {
			rules.Lines = append(rules.Lines, line)
		}
	}
	return rules
}
