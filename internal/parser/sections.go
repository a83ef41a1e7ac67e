// Package parser turns the text output of system tools (dmidecode, ufw,
// iptables, nft, firewall-cmd, systemctl, last) and the account database into
// the agent's data model. Parsers are pure functions over strings; malformed
// lines are skipped rather than reported.
package parser

import (
	"bufio"
	"strings"
)

// Section is a block of tool output opened by a boundary line.
type Section struct {
	// Header is the boundary line that opened the section.
	Header string
	// Fields holds the key/value pairs found inside the section.
	Fields map[string]string
	// Lines holds every non-empty line after the header, trimmed.
	Lines []string
}

// ScanSections splits text into sections. A line for which isBoundary
// returns true closes the open section and opens a new one. Inside a section
// each line containing a colon is split at the first colon into a trimmed
// key and value; empty values are dropped and later values win. Lines before
// the first boundary are ignored.
func ScanSections(text string, isBoundary func(line string) bool) []Section {
	var (
		sections []Section
		current  *Section
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if isBoundary(line) {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &Section{Header: line, Fields: map[string]string{}}
			continue
		}

		if current == nil {
			continue
		}
		current.Lines = append(current.Lines, line)

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		current.Fields[key] = value
	}

	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}
