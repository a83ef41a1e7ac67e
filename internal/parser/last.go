package parser

import (
	"strings"

	"github.com/Guliveer/hostscope/internal/models"
)

// minLastFields is user, tty, host and a weekday-prefixed four-token time.
const minLastFields = 8

var weekdays = map[string]bool{
	"Mon": true, "Tue": true, "Wed": true, "Thu": true,
	"Fri": true, "Sat": true, "Sun": true,
}

// pseudoLogins are wtmp entries that do not describe a user session.
var pseudoLogins = map[string]bool{
	"reboot":   true,
	"shutdown": true,
	"wtmp":     true,
}

// ParseLast parses `last -F` output. Times keep the "Mon DD HH:MM:SS YYYY"
// window that follows the weekday. Open sessions get models.StillLoggedIn as
// logout time and models.DurationNA as duration.
func ParseLast(output string) []models.LoginRecord {
	records := []models.LoginRecord{}

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < minLastFields || pseudoLogins[fields[0]] {
			continue
		}

		// Local console logins have no host column.
		wd := 3
		host := fields[2]
		if weekdays[fields[2]] {
			wd = 2
			host = "local"
		} else if !weekdays[fields[3]] {
			continue
		}
		if host == "in" {
			host = "local"
		}
		if len(fields) < wd+5 {
			continue
		}

		record := models.LoginRecord{
			User:       fields[0],
			Host:       host,
			LoginTime:  strings.Join(fields[wd+1:wd+5], " "),
			LogoutTime: models.StillLoggedIn,
			Duration:   models.DurationNA,
		}
		parseLogout(&record, fields[wd+5:])
		records = append(records, record)
	}
	return records
}

// parseLogout fills the logout time and duration from the tokens that follow
// the login time.
func parseLogout(record *models.LoginRecord, rest []string) {
	if len(rest) == 0 || strings.Join(rest, " ") == models.StillLoggedIn {
		return
	}

	var words []string
	switch {
	case rest[0] == "-" && len(rest) >= 6 && weekdays[rest[1]]:
		record.LogoutTime = strings.Join(rest[2:6], " ")
		rest = rest[6:]
	case rest[0] == "-":
		rest = rest[1:]
		fallthrough
	default:
		for len(rest) > 0 && !isDuration(rest[0]) {
			words = append(words, rest[0])
			rest = rest[1:]
		}
		if len(words) > 0 {
			record.LogoutTime = strings.Join(words, " ")
		}
	}

	if len(rest) > 0 && isDuration(rest[0]) {
		record.Duration = strings.Trim(rest[0], "()")
	}
}

func isDuration(token string) bool {
	return strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")")
}
