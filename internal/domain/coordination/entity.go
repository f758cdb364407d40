package coordination

import (
	"slices"
	"time"
)

// Coordination is an organizational unit. Members are the users listing its
// ID; coordinators review those members.
type Coordination struct {
	ID                string
	Name              string
	Description       string
	CoordinatorEmails []string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO / Join
	MemberCount int
}

func (c *Coordination) IsCoordinator(email string) bool {
	return slices.Contains(c.CoordinatorEmails, email)
}
