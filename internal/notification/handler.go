package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parthg/splitwise/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/user/{userId}", h.ListByUser)
	r.Put("/{id}/read", h.MarkRead)
	r.Put("/user/{userId}/read", h.MarkAllRead)

	return r
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid userId")
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.service.ListByUser(r.Context(), userID, unreadOnly)
	if err != nil {
		response.InternalError(w, "failed to list notifications")
		return
	}
	response.JSON(w, http.StatusOK, notifications)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "failed to mark notification read")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid userId")
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		response.InternalError(w, "failed to mark notifications read")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "all notifications marked as read"})
}
