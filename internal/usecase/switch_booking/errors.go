package switch_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("switch_booking: booking not found")

	// ErrInstanceNotFound возвращается, когда целевое занятие не найдено
	ErrInstanceNotFound = errors.New("switch_booking: target class instance not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("switch_booking: access denied")

	// ErrCannotSwitch возвращается, когда бронирование нельзя перенести:
	// оно отменено, завершено или находится в листе ожидания
	ErrCannotSwitch = errors.New("switch_booking: booking cannot be switched")

	// ErrSwitchWindowClosed возвращается, когда до начала занятия
	// осталось меньше часа
	ErrSwitchWindowClosed = errors.New("switch_booking: switch window is closed")

	// ErrAlreadyBooked возвращается при переносе на то же занятие или
	// на занятие, куда участник уже записан
	ErrAlreadyBooked = errors.New("switch_booking: already booked for target class")

	// ErrInstanceFull возвращается, когда в целевом занятии нет мест -
	// перенос не предлагает лист ожидания
	ErrInstanceFull = errors.New("switch_booking: target class is full")

	// ErrRegistrationClosed возвращается, когда запись на целевое занятие
	// закрыта: оно началось или его неделя ещё не открыта
	ErrRegistrationClosed = errors.New("switch_booking: registration is closed for target class")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("switch_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("switch_booking: internal error")
)
