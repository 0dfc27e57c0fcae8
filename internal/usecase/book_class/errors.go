package book_class

import "errors"

var (
	// ErrInstanceNotFound возвращается, когда занятие не найдено в окне расписания
	ErrInstanceNotFound = errors.New("book_class: class instance not found")

	// ErrNoActiveEntitlement возвращается, когда у участника нет активного
	// абонемента или билета
	ErrNoActiveEntitlement = errors.New("book_class: no active entitlement")

	// ErrEntitlementExpired возвращается, когда срок абонемента или билета истёк
	ErrEntitlementExpired = errors.New("book_class: entitlement expired")

	// ErrEntitlementDepleted возвращается, когда лимит занятий исчерпан
	ErrEntitlementDepleted = errors.New("book_class: entitlement depleted")

	// ErrTagMismatch возвращается, когда план не покрывает требуемые теги занятия
	ErrTagMismatch = errors.New("book_class: plan does not cover required tags")

	// ErrAlreadyBooked возвращается при повторной записи на то же занятие
	ErrAlreadyBooked = errors.New("book_class: already booked for this class")

	// ErrAccountBlocked возвращается, когда участник временно заблокирован
	// за поздние отмены
	ErrAccountBlocked = errors.New("book_class: account is temporarily blocked")

	// ErrRegistrationClosed возвращается, когда запись на занятие закрыта:
	// занятие уже началось или его неделя ещё не открыта
	ErrRegistrationClosed = errors.New("book_class: registration is closed for this class")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_class: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_class: internal error")
)
