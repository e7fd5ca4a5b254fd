package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parthg/splitwise/internal/group"
	"github.com/parthg/splitwise/internal/user"
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

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/group/{groupId}", h.ListByGroup)
	r.Get("/user/{userId}/paid", h.ListPaidBy)
	r.Get("/user/{userId}/received", h.ListPaidTo)

	return r
}

// Create godoc
// @Summary      Record a settlement
// @Description  Records a repayment between two group members, capped at the outstanding dues
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        settlement  body      CreateSettlementRequest  true  "Settlement to record"
// @Success      201         {object}  response.APIResponse{data=SettlementResponse}
// @Failure      400         {object}  response.APIResponse
// @Failure      404         {object}  response.APIResponse
// @Router       /settlements [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created.ToResponse())
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	s, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, s.ToResponse())
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated.ToResponse())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "settlement deleted successfully"})
}

func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, r, "groupId")
	if !ok {
		return
	}

	settlements, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, settlements)
}

func (h *Handler) ListPaidBy(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	settlements, err := h.service.ListPaidBy(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, settlements)
}

func (h *Handler) ListPaidTo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	settlements, err := h.service.ListPaidTo(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, settlements)
}

func (h *Handler) writeList(w http.ResponseWriter, settlements []*Settlement) {
	resp := make([]*SettlementResponse, 0, len(settlements))
	for _, s := range settlements {
		resp = append(resp, s.ToResponse())
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSettlementNotFound),
		errors.Is(err, ErrPayerNotFound),
		errors.Is(err, ErrPayeeNotFound),
		errors.Is(err, group.ErrGroupNotFound),
		errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrSamePayerPayee),
		errors.Is(err, ErrNoDuesExist),
		errors.Is(err, ErrSettleExceedsDue):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "failed to process settlement")
	}
}
