package book_class

import (
	"errors"
	"net/http"

	"github.com/m04kA/GYM-ClassService/internal/api/handlers"
	"github.com/m04kA/GYM-ClassService/internal/api/middleware"
	usecase "github.com/m04kA/GYM-ClassService/internal/usecase/book_class"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInstanceNotFound    = "занятие не найдено"
	msgNoActiveEntitlement = "нет активного абонемента или билета"
	msgEntitlementExpired  = "срок абонемента или билета истёк"
	msgEntitlementDepleted = "лимит занятий исчерпан"
	msgTagMismatch         = "абонемент не распространяется на это занятие"
	msgAlreadyBooked       = "вы уже записаны на это занятие"
	msgAccountBlocked      = "запись временно заблокирована за поздние отмены"
	msgRegistrationClosed  = "запись на это занятие закрыта"
	msgForbidden           = "доступ запрещен"
)

type Handler struct {
	useCase BookClassUseCase
	logger  Logger
}

func NewHandler(useCase BookClassUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req BookClassRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	actorRole := middleware.RoleFromContext(r.Context())

	memberID := actorID
	if req.MemberID != nil {
		memberID = *req.MemberID
	}

	// Записывать других участников может только персонал
	if memberID != actorID && !actorRole.IsStaff() {
		h.logger.Warn("POST /bookings - Member %d attempted to book for member %d", actorID, memberID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	response, err := h.useCase.Execute(r.Context(), &usecase.Request{
		MemberID:      memberID,
		ActorID:       actorID,
		ActorRole:     actorRole,
		InstanceID:    req.InstanceID,
		ForceWaitlist: req.ForceWaitlist,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, usecase.ErrInstanceNotFound):
			h.logger.Warn("POST /bookings - Instance not found: instance_id=%s", req.InstanceID)
			handlers.RespondNotFound(w, msgInstanceNotFound)

		case errors.Is(err, usecase.ErrNoActiveEntitlement):
			handlers.RespondUnprocessable(w, msgNoActiveEntitlement)

		case errors.Is(err, usecase.ErrEntitlementExpired):
			handlers.RespondUnprocessable(w, msgEntitlementExpired)

		case errors.Is(err, usecase.ErrEntitlementDepleted):
			handlers.RespondUnprocessable(w, msgEntitlementDepleted)

		case errors.Is(err, usecase.ErrTagMismatch):
			handlers.RespondUnprocessable(w, msgTagMismatch)

		case errors.Is(err, usecase.ErrAlreadyBooked):
			h.logger.Warn("POST /bookings - Already booked: member=%d, instance=%s", memberID, req.InstanceID)
			handlers.RespondConflict(w, msgAlreadyBooked)

		case errors.Is(err, usecase.ErrAccountBlocked):
			h.logger.Warn("POST /bookings - Account blocked: member=%d", memberID)
			handlers.RespondForbidden(w, msgAccountBlocked)

		case errors.Is(err, usecase.ErrRegistrationClosed):
			handlers.RespondUnprocessable(w, msgRegistrationClosed)

		default:
			h.logger.Error("POST /bookings - Failed to book class: member=%d, error=%v", memberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: id=%d, member=%d, status=%s",
		response.ID, response.MemberID, response.Status)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
