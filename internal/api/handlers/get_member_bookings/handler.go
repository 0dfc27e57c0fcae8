package get_member_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GYM-ClassService/internal/api/handlers"
	"github.com/m04kA/GYM-ClassService/internal/api/middleware"
	"github.com/m04kA/GYM-ClassService/internal/service/bookings"
	"github.com/m04kA/GYM-ClassService/internal/service/bookings/models"
)

const (
	msgInvalidMemberID = "некорректный ID участника"
	msgInvalidStatus   = "некорректный статус бронирования"
	msgForbidden       = "доступ запрещен"
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

// Handle GET /api/v1/members/{memberId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(mux.Vars(r)["memberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /members/{id}/bookings - Invalid member ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMemberID)
		return
	}

	req := &models.GetMemberBookingsRequest{
		MemberID:  memberID,
		ActorID:   middleware.UserIDFromContext(r.Context()),
		ActorRole: middleware.RoleFromContext(r.Context()),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	response, err := h.service.GetMemberBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /members/{id}/bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /members/{id}/bookings - Access denied: member_id=%d", memberID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /members/{id}/bookings - Failed to fetch bookings: member_id=%d, error=%v",
				memberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, response)
}
