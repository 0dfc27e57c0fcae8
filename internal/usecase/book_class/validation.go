package book_class

import (
	"fmt"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// validateRequest проверяет корректность входных данных
func validateRequest(req *Request) error {
	if req.MemberID <= 0 {
		return fmt.Errorf("%w: memberId must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorId must be positive", ErrInvalidInput)
	}
	if req.InstanceID == "" {
		return fmt.Errorf("%w: instanceId is required", ErrInvalidInput)
	}
	return nil
}

// checkEligibility проверяет, даёт ли entitlement право записаться на занятие.
// Порядок проверок фиксирован: нет активного плана, истёк срок, исчерпан
// лимит, план не покрывает теги занятия.
func checkEligibility(ent *domain.Entitlement, requiredTags []string, now time.Time) error {
	if ent == nil {
		return ErrNoActiveEntitlement
	}

	switch ent.Status {
	case domain.EntitlementActive:
	case domain.EntitlementExpired:
		return ErrEntitlementExpired
	case domain.EntitlementDepleted:
		return ErrEntitlementDepleted
	default:
		// frozen, cancelled и прочие неактивные состояния
		return ErrNoActiveEntitlement
	}

	if ent.IsExpired(now) {
		return ErrEntitlementExpired
	}
	if ent.IsDepleted() {
		return ErrEntitlementDepleted
	}
	if !ent.Covers(requiredTags) {
		return ErrTagMismatch
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
