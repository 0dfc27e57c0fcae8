package get_penalty

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GYM-ClassService/internal/api/handlers"
	"github.com/m04kA/GYM-ClassService/internal/api/middleware"
	"github.com/m04kA/GYM-ClassService/internal/service/members"
)

const (
	msgInvalidMemberID = "некорректный ID участника"
	msgNotFound        = "участник не найден"
	msgForbidden       = "доступ запрещен"
)

type Handler struct {
	service MemberService
	logger  Logger
}

func NewHandler(service MemberService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/members/{memberId}/penalty
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(mux.Vars(r)["memberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /members/{id}/penalty - Invalid member ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMemberID)
		return
	}

	response, err := h.service.GetPenalty(
		r.Context(),
		memberID,
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
	)
	if err != nil {
		switch {
		case errors.Is(err, members.ErrMemberNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, members.ErrAccessDenied):
			h.logger.Warn("GET /members/{id}/penalty - Access denied: member_id=%d", memberID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /members/{id}/penalty - Failed to fetch penalty: member_id=%d, error=%v",
				memberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, response)
}
