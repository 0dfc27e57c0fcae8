package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/GYM-ClassService/pkg/types"
)

// Namespace for deterministic class-instance identifiers.
var classInstanceNamespace = uuid.MustParse("7b1e4a52-3c9d-4f10-9a8e-6d2f5b0c71e3")

// ScheduleTemplate represents a recurring weekly class definition
type ScheduleTemplate struct {
	ID              int64
	Name            string
	CoachName       string
	DayOfWeek       time.Weekday // 0 = Sunday
	StartTime       types.TimeString
	DurationMinutes int
	Capacity        int
	RequiredTags    []string
	Location        string
	IsActive        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClassKey is the canonical composite key of a class occurrence.
// Bookings are matched to occurrences ONLY through this key, never through
// ad-hoc date-string comparison: an occurrence may not be materialized
// anywhere when a booking for it already exists.
type ClassKey struct {
	TemplateID int64
	ClassDate  time.Time // normalized to midnight UTC
}

// NewClassKey creates a key with the date normalized to midnight UTC
func NewClassKey(templateID int64, date time.Time) ClassKey {
	y, m, d := date.Date()
	return ClassKey{
		TemplateID: templateID,
		ClassDate:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

// DateKey returns the date part in "2006-01-02" form
func (k ClassKey) DateKey() string {
	return k.ClassDate.Format(DateFormat)
}

// InstanceID returns the deterministic identifier of the occurrence.
// The same (template, date) pair always yields the same id, so repeated
// schedule expansions over overlapping windows are idempotent.
func (k ClassKey) InstanceID() string {
	return uuid.NewSHA1(classInstanceNamespace, []byte(fmt.Sprintf("%d:%s", k.TemplateID, k.DateKey()))).String()
}

// Equal compares two keys by template and calendar date
func (k ClassKey) Equal(other ClassKey) bool {
	return k.TemplateID == other.TemplateID && k.DateKey() == other.DateKey()
}

// ClassInstance is a materialized occurrence of a schedule template.
// Instances are value objects derived on the fly; an instance with zero
// bookings is never persisted.
type ClassInstance struct {
	ID              string
	Key             ClassKey
	Name            string
	CoachName       string
	StartTime       types.TimeString
	DurationMinutes int
	Capacity        int
	RequiredTags    []string
	Location        string
}

// StartAt returns the full start timestamp of the occurrence in loc
func (c *ClassInstance) StartAt(loc *time.Location) (time.Time, error) {
	return c.StartTime.At(c.Key.ClassDate, loc)
}

// AnnotatedInstance is a class instance enriched with live enrollment data
type AnnotatedInstance struct {
	ClassInstance

	EnrolledCount int
	WaitlistCount int
	// WaitlistOrder booking IDs in promotion order (FIFO by creation time)
	WaitlistOrder []int64
	IsFull        bool
}
