package domain

import "time"

// EntitlementKind discriminates the two consumable capacity models
type EntitlementKind string

const (
	KindSubscription EntitlementKind = "subscription"
	KindTicket       EntitlementKind = "ticket"
)

// EntitlementStatus represents the lifecycle state of an entitlement
type EntitlementStatus string

const (
	EntitlementActive    EntitlementStatus = "active"
	EntitlementFrozen    EntitlementStatus = "frozen"
	EntitlementDepleted  EntitlementStatus = "depleted"
	EntitlementExpired   EntitlementStatus = "expired"
	EntitlementCancelled EntitlementStatus = "cancelled"
)

// PlanTier subscription tier, affects the registration unlock day
type PlanTier string

const (
	TierStandard  PlanTier = "standard"
	TierUnlimited PlanTier = "unlimited"
)

// Entitlement is a member's consumable booking capacity: either a
// subscription quota per period or a prepaid session ticket.
// The used counter is advanced ONLY by the conditional-update consume
// statement in the entitlement repository; callers never recompute it.
type Entitlement struct {
	ID       int64
	MemberID int64
	Kind     EntitlementKind
	PlanName string
	Tier     PlanTier
	Status   EntitlementStatus

	// Subscription fields
	ClassesPerPeriod int
	ClassesUsed      int
	PeriodStart      *time.Time
	PeriodEnd        *time.Time

	// Ticket fields
	TotalSessions int
	SessionsUsed  int
	ExpiresAt     *time.Time

	// Tags the plan grants access to
	Tags []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Allowed returns the total unit allowance for the entitlement kind
func (e *Entitlement) Allowed() int {
	if e.Kind == KindTicket {
		return e.TotalSessions
	}
	return e.ClassesPerPeriod
}

// Used returns the consumed unit count for the entitlement kind
func (e *Entitlement) Used() int {
	if e.Kind == KindTicket {
		return e.SessionsUsed
	}
	return e.ClassesUsed
}

// Remaining returns the number of units left
func (e *Entitlement) Remaining() int {
	remaining := e.Allowed() - e.Used()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired returns true if the entitlement validity window has passed
func (e *Entitlement) IsExpired(now time.Time) bool {
	if e.Status == EntitlementExpired {
		return true
	}
	deadline := e.PeriodEnd
	if e.Kind == KindTicket {
		deadline = e.ExpiresAt
	}
	return deadline != nil && deadline.Before(startOfDay(now))
}

// IsDepleted returns true if no units are left
func (e *Entitlement) IsDepleted() bool {
	return e.Status == EntitlementDepleted || e.Remaining() == 0
}

// Covers returns true if the plan grants access to every required tag
func (e *Entitlement) Covers(requiredTags []string) bool {
	for _, required := range requiredTags {
		found := false
		for _, tag := range e.Tags {
			if tag == required {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// EarlyUnlock returns true if the tier opens next-week registration a day
// earlier than the standard Thursday-noon unlock
func (e *Entitlement) EarlyUnlock() bool {
	return e.Tier == TierUnlimited
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
