package domain

import "time"

// Role caller role, comes from the API gateway
type Role string

const (
	RoleMember Role = "member"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
)

// IsStaff returns true for roles with administrative override capability
func (r Role) IsStaff() bool {
	return r == RoleCoach || r == RoleAdmin
}

// PenaltyRecord tracks a member's late-cancellation strikes.
// Once the strike count reaches the limit a temporary booking block is set;
// the counter is not advanced further while the block is in effect.
type PenaltyRecord struct {
	MemberID          int64
	LateCancellations int
	BlockEndDate      *time.Time
}

// IsBlocked returns true if the member is blocked at the given moment
func (p *PenaltyRecord) IsBlocked(now time.Time) bool {
	return p.BlockEndDate != nil && p.BlockEndDate.After(now)
}
