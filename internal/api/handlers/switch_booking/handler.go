package switch_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GYM-ClassService/internal/api/handlers"
	"github.com/m04kA/GYM-ClassService/internal/api/middleware"
	usecase "github.com/m04kA/GYM-ClassService/internal/usecase/switch_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgBookingNotFound    = "бронирование не найдено"
	msgInstanceNotFound   = "занятие не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotSwitch       = "бронирование не может быть перенесено"
	msgSwitchWindowClosed = "время для переноса записи истекло"
	msgAlreadyBooked      = "вы уже записаны на это занятие"
	msgInstanceFull       = "в целевом занятии нет свободных мест"
	msgRegistrationClosed = "запись на это занятие закрыта"
)

type Handler struct {
	useCase SwitchBookingUseCase
	logger  Logger
}

func NewHandler(useCase SwitchBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/switch
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/switch - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req SwitchBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/switch - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	response, err := h.useCase.Execute(r.Context(), &usecase.Request{
		BookingID:    bookingID,
		ActorID:      middleware.UserIDFromContext(r.Context()),
		ActorRole:    middleware.RoleFromContext(r.Context()),
		ToInstanceID: req.ToInstanceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/switch - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, usecase.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/switch - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, usecase.ErrInstanceNotFound):
			h.logger.Warn("POST /bookings/{id}/switch - Target instance not found: instance_id=%s", req.ToInstanceID)
			handlers.RespondNotFound(w, msgInstanceNotFound)

		case errors.Is(err, usecase.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/switch - Access denied: booking_id=%d", bookingID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, usecase.ErrCannotSwitch):
			handlers.RespondUnprocessable(w, msgCannotSwitch)

		case errors.Is(err, usecase.ErrSwitchWindowClosed):
			handlers.RespondUnprocessable(w, msgSwitchWindowClosed)

		case errors.Is(err, usecase.ErrAlreadyBooked):
			h.logger.Warn("POST /bookings/{id}/switch - Already booked on target: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgAlreadyBooked)

		case errors.Is(err, usecase.ErrInstanceFull):
			handlers.RespondUnprocessable(w, msgInstanceFull)

		case errors.Is(err, usecase.ErrRegistrationClosed):
			handlers.RespondUnprocessable(w, msgRegistrationClosed)

		default:
			h.logger.Error("POST /bookings/{id}/switch - Failed to switch booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/switch - Booking switched: old=%d, new=%d, instance=%s",
		bookingID, response.ID, response.InstanceID)
	handlers.RespondJSON(w, http.StatusOK, response)
}
