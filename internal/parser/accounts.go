package parser

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/Guliveer/hostscope/internal/models"
)

// MinNormalUID is the first uid handed out to regular users.
const MinNormalUID = 1000

// DefaultDisabledShells are the login shells that mark an account as
// non-interactive.
var DefaultDisabledShells = []string{"/usr/sbin/nologin", "/bin/false"}

// passwd fields: name:password:uid:gid:gecos:home:shell
const passwdFields = 7

// ParsePasswd classifies every well-formed record of an /etc/passwd style
// database. An account is normal when its uid is at least MinNormalUID and
// its shell is not one of disabledShells; otherwise it is a system account.
// Comments, blank lines, lines with fewer than seven fields and lines with a
// non-numeric uid contribute nothing.
func ParsePasswd(content string, disabledShells []string) models.AccountSummary {
	summary := models.NewAccountSummary()

	disabled := make(map[string]bool, len(disabledShells))
	for _, s := range disabledShells {
		disabled[s] = true
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) < passwdFields {
			continue
		}
		uid, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}

		account := models.UserAccount{
			Username: parts[0],
			UID:      uid,
			HomeDir:  parts[5],
			Shell:    parts[6],
		}
		summary.Details = append(summary.Details, account)
		if uid >= MinNormalUID && !disabled[account.Shell] {
			summary.NormalUsers = append(summary.NormalUsers, account.Username)
		} else {
			summary.SystemUsers = append(summary.SystemUsers, account.Username)
		}
	}
	return summary
}
