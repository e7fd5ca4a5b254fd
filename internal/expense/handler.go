package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parthg/splitwise/internal/expense/split"
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
	r.Put("/{id}", h.Update)
	r.Route("/group/{groupId}", func(r chi.Router) {
		r.Get("/", h.ListByGroup)
		r.Get("/user/{userId}", h.ListByGroupAndPayer)
		r.Get("/{id}/splits", h.GetSplits)
		r.Delete("/{id}", h.Delete)
		r.Get("/balances", h.GroupBalances)
		r.Get("/balances/user/{userId}", h.UserBalances)
		r.Get("/balances/between", h.BalanceBetween)
	})

	return r
}

// Create godoc
// @Summary      Add an expense
// @Description  Adds an expense to a group, calculating per-participant splits
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        expense  body      AddExpenseRequest  true  "Expense to add"
// @Success      201      {object}  response.APIResponse{data=ExpenseResponse}
// @Failure      400      {object}  response.APIResponse
// @Failure      404      {object}  response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req AddExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.service.AddExpense(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, result.ToResponse())
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.service.UpdateExpense(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result.ToResponse())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, r, "groupId")
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteExpense(r.Context(), groupID, id); err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "expense deleted successfully"})
}

func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, r, "groupId")
	if !ok {
		return
	}

	expenses, err := h.service.GetByGroup(r.Context(), groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, e.ToResponse())
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *Handler) ListByGroupAndPayer(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, r, "groupId")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	expenses, err := h.service.GetByGroupAndPayer(r.Context(), groupID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, e.ToResponse())
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSplits(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, r, "groupId")
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	splits, err := h.service.GetSplits(r.Context(), groupID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]*SplitResponse, 0, len(splits))
	for _, s := range splits {
		resp = append(resp, s.ToResponse())
	}
	response.JSON(w, http.StatusOK, resp)
}

// GroupBalances godoc
// @Summary      Group balances
// @Description  Returns the net pairwise balances of a group as statements
// @Tags         expenses
// @Produce      json
// @Param        groupId  path      int  true  "Group ID"
// @Success      200      {object}  response.APIResponse{data=[]string}
// @Failure      404      {object}  response.APIResponse
// @Router       /expenses/group/{groupId}/balances [get]
func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, r, "groupId")
	if !ok {
		return
	}

	statements, err := h.service.GroupBalances(r.Context(), groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, statements)
}

func (h *Handler) UserBalances(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, r, "groupId")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	statements, err := h.service.UserBalances(r.Context(), groupID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, statements)
}

func (h *Handler) BalanceBetween(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, r, "groupId")
	if !ok {
		return
	}
	user1, err := strconv.ParseInt(r.URL.Query().Get("user1"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid user1")
		return
	}
	user2, err := strconv.ParseInt(r.URL.Query().Get("user2"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid user2")
		return
	}

	amount, err := h.service.BalanceBetweenUsers(r.Context(), groupID, user1, user2)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, &BalanceResponse{User1ID: user1, User2ID: user2, Amount: amount})
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
	case errors.Is(err, group.ErrGroupNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrExpenseGroupMismatch),
		errors.Is(err, ErrExactCountMismatch),
		errors.Is(err, ErrPercentageCountMismatch),
		errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, err.Error())
	default:
		// Split calculation errors are client errors; anything unrecognized
		// is a server error.
		if isSplitError(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "failed to process expense")
	}
}

func isSplitError(err error) bool {
	for _, target := range []error{
		split.ErrNoParticipants,
		split.ErrInvalidPercentages,
		split.ErrInvalidExactAmounts,
		split.ErrNegativeAmount,
		split.ErrMissingPercentage,
		split.ErrMissingExactAmount,
		split.ErrPercentageOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
