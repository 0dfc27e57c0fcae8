package get_member_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/GYM-ClassService/internal/api/handlers"
	"github.com/m04kA/GYM-ClassService/internal/api/middleware"
	"github.com/m04kA/GYM-ClassService/internal/service/bookings"
)

const (
	msgInvalidInstanceID = "некорректный ID занятия"
	msgNotFound          = "бронирование не найдено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/classes/{instanceId}/booking
// Возвращает активное бронирование текущего участника на занятие
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	instanceID := mux.Vars(r)["instanceId"]
	if instanceID == "" {
		handlers.RespondBadRequest(w, msgInvalidInstanceID)
		return
	}

	memberID := middleware.UserIDFromContext(r.Context())

	response, err := h.service.GetMemberBooking(r.Context(), memberID, instanceID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /classes/{id}/booking - Failed to fetch booking: member=%d, instance=%s, error=%v",
				memberID, instanceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, response)
}
