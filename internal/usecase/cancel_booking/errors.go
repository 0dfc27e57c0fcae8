package cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("cancel_booking: booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("cancel_booking: access denied")

	// ErrAccountBlocked возвращается, когда участник заблокирован за поздние отмены
	ErrAccountBlocked = errors.New("cancel_booking: account is blocked for late cancellations")

	// ErrCannotCancel возвращается, когда бронирование нельзя отменить:
	// оно уже отменено, завершено или занятие началось
	ErrCannotCancel = errors.New("cancel_booking: booking cannot be cancelled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
