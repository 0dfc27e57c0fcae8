package switch_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// validateRequest проверяет корректность входных данных
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorId must be positive", ErrInvalidInput)
	}
	if req.ToInstanceID == "" {
		return fmt.Errorf("%w: toInstanceId is required", ErrInvalidInput)
	}
	return nil
}

// countEnrolled считает занятые места среди бронирований занятия
func countEnrolled(bookings []*domain.Booking) int {
	count := 0
	for _, b := range bookings {
		if b.CountsAsEnrolled() {
			count++
		}
	}
	return count
}

// eligibleForPromotion проверяет, может ли кандидат из листа ожидания
// занять освободившееся место
func eligibleForPromotion(ent *domain.Entitlement, requiredTags []string, now time.Time) bool {
	if ent == nil || ent.Status != domain.EntitlementActive {
		return false
	}
	if ent.IsExpired(now) || ent.IsDepleted() {
		return false
	}
	return ent.Covers(requiredTags)
}
