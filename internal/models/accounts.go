package models

import "encoding/json"

// UserAccount is one record of the system account database.
type UserAccount struct {
	Username string `json:"username"`
	UID      int    `json:"uid"`
	HomeDir  string `json:"home_dir"`
	Shell    string `json:"shell"`
}

// AccountSummary classifies every account as either a normal or a system
// user. Totals are derived from the lists when serialized.
type AccountSummary struct {
	Details     []UserAccount
	NormalUsers []string
	SystemUsers []string
}

// NewAccountSummary returns a summary with non-nil lists.
func NewAccountSummary() AccountSummary {
	return AccountSummary{
		Details:     []UserAccount{},
		NormalUsers: []string{},
		SystemUsers: []string{},
	}
}

func (s AccountSummary) TotalUsers() int      { return len(s.Details) }
func (s AccountSummary) NormalUserCount() int { return len(s.NormalUsers) }
func (s AccountSummary) SystemUserCount() int { return len(s.SystemUsers) }

func (s AccountSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalUsers      int           `json:"total_users"`
		NormalUserCount int           `json:"normal_user_count"`
		SystemUserCount int           `json:"system_user_count"`
		NormalUsers     []string      `json:"normal_users"`
		SystemUsers     []string      `json:"system_users"`
		Details         []UserAccount `json:"details"`
	}{
		TotalUsers:      s.TotalUsers(),
		NormalUserCount: s.NormalUserCount(),
		SystemUserCount: s.SystemUserCount(),
		NormalUsers:     s.NormalUsers,
		SystemUsers:     s.SystemUsers,
		Details:         s.Details,
	})
}

// AccountResult is the output of the account collector.
type AccountResult struct {
	Summary      AccountSummary
	Availability Availability
}

const (
	// StillLoggedIn is the logout time of an open session.
	StillLoggedIn = "still logged in"
	// DurationNA is the duration of an open session.
	DurationNA = "N/A"
)

// LoginRecord is one session from the login history.
type LoginRecord struct {
	User       string `json:"user"`
	Host       string `json:"host"`
	LoginTime  string `json:"login_time"`
	LogoutTime string `json:"logout_time"`
	Duration   string `json:"duration"`
}

// LoginResult is the output of the login history collector.
type LoginResult struct {
	Records      []LoginRecord
	Availability Availability
}
