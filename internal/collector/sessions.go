package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Guliveer/hostscope/internal/models"
)

// SessionCollector lists logged-in user sessions from utmp.
type SessionCollector struct{}

// NewSessionCollector creates a new session collector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{}
}

// Name returns the collector identifier.
func (c *SessionCollector) Name() string { return "sessions" }

// Collect returns a []models.UserSession.
func (c *SessionCollector) Collect(ctx context.Context) (interface{}, error) {
	users, err := host.UsersWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return toSessions(users), nil
}

func toSessions(users []host.UserStat) []models.UserSession {
	sessions := make([]models.UserSession, 0, len(users))
	for _, u := range users {
		sessions = append(sessions, models.UserSession{
			User:     u.User,
			Terminal: u.Terminal,
			Host:     u.Host,
			Started:  time.Unix(int64(u.Started), 0).UTC(),
		})
	}
	return sessions
}

// IsAvailable returns true.
func (c *SessionCollector) IsAvailable() bool { return true }
