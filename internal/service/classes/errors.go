package classes

import "errors"

var (
	// ErrInstanceNotFound возвращается, когда занятие не найдено в окне расписания
	ErrInstanceNotFound = errors.New("class instance not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
