package domain

// Default booking policy values
const (
	DefaultCancelWindowHours = 6
	DefaultSwitchWindowHours = 1
	DefaultLateCancelLimit   = 3
	DefaultBlockDays         = 3

	DefaultScheduleWindowDays = 14
)

// Registration unlock parameters: next week opens at noon on the unlock day
// of the current week. Week starts on Sunday.
const (
	UnlockHour = 12

	// StandardUnlockDay четверг для обычных абонементов
	StandardUnlockDay = 4 // Thursday
	// EarlyUnlockDay среда для unlimited-тарифов
	EarlyUnlockDay = 3 // Wednesday
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// EnrolledStatuses статусы, занимающие место в классе
// Используются при подсчёте enrolled_count
var EnrolledStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCompleted,
	StatusNoShow,
	StatusLate,
}

// ActiveStatuses все неотменённые статусы
// Используются при проверке дубликатов бронирований
var ActiveStatuses = []BookingStatus{
	StatusConfirmed,
	StatusWaitingList,
	StatusCompleted,
	StatusNoShow,
	StatusLate,
}
