package list_classes

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/api/handlers"
	"github.com/m04kA/GYM-ClassService/internal/api/middleware"
	"github.com/m04kA/GYM-ClassService/internal/domain"
	"github.com/m04kA/GYM-ClassService/internal/service/classes"
	"github.com/m04kA/GYM-ClassService/internal/service/classes/models"
)

const (
	msgInvalidWeekOffset = "некорректный параметр weekOffset"
	msgInvalidFrom       = "некорректный параметр from, ожидается YYYY-MM-DD"
	msgInvalidDays       = "некорректный параметр days"
	msgInvalidWindow     = "некорректное окно расписания"
)

type Handler struct {
	service ClassService
	logger  Logger
}

func NewHandler(service ClassService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/classes
// Окно задаётся либо ?weekOffset=0|1, либо ?from=YYYY-MM-DD&days=N
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &models.GetInstancesRequest{
		MemberID: middleware.UserIDFromContext(r.Context()),
	}

	query := r.URL.Query()

	if raw := query.Get("weekOffset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /classes - Invalid weekOffset: %v", err)
			handlers.RespondBadRequest(w, msgInvalidWeekOffset)
			return
		}
		req.WeekOffset = &offset
	}

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /classes - Invalid from: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFrom)
			return
		}
		req.From = &from
	}

	if raw := query.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /classes - Invalid days: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDays)
			return
		}
		req.Days = &days
	}

	response, err := h.service.ListInstances(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, classes.ErrInvalidInput):
			h.logger.Warn("GET /classes - Invalid window: %v", err)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		default:
			h.logger.Error("GET /classes - Failed to list instances: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, response)
}
