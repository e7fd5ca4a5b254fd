package settlement

import "time"

type CreateSettlementRequest struct {
	GroupID int64   `json:"group_id"`
	PaidBy  int64   `json:"paid_by"`
	PaidTo  int64   `json:"paid_to"`
	Amount  float64 `json:"amount"`
}

type UpdateSettlementRequest struct {
	Amount float64 `json:"amount"`
}

type SettlementResponse struct {
	ID             int64     `json:"id"`
	GroupID        int64     `json:"group_id"`
	PaidBy         int64     `json:"paid_by"`
	PaidByUsername string    `json:"paid_by_username,omitempty"`
	PaidTo         int64     `json:"paid_to"`
	PaidToUsername string    `json:"paid_to_username,omitempty"`
	Amount         float64   `json:"amount"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:             s.ID,
		GroupID:        s.GroupID,
		PaidBy:         s.PaidBy,
		PaidByUsername: s.PaidByUsername,
		PaidTo:         s.PaidTo,
		PaidToUsername: s.PaidToUsername,
		Amount:         s.Amount,
		CreatedAt:      s.CreatedAt,
	}
}
