package expense

import "time"

// AddExpenseRequest carries a new expense. Participants lists everyone the
// expense is split across; for PERCENTAGE and EXACT splits, Values holds the
// percentage or amount for the participant at the same index.
type AddExpenseRequest struct {
	GroupID      int64     `json:"group_id"`
	PayerID      int64     `json:"payer_id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	SplitType    string    `json:"split_type"`
	Participants []int64   `json:"participants"`
	Values       []float64 `json:"values,omitempty"`
}

// UpdateExpenseRequest replaces an expense wholesale. The split pipeline is
// re-run and previously stored splits are discarded.
type UpdateExpenseRequest struct {
	PayerID      int64     `json:"payer_id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	SplitType    string    `json:"split_type"`
	Participants []int64   `json:"participants"`
	Values       []float64 `json:"values,omitempty"`
}

type SplitResponse struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username,omitempty"`
	Amount   float64 `json:"amount"`
}

type ExpenseResponse struct {
	ID            int64            `json:"id"`
	GroupID       int64            `json:"group_id"`
	PayerID       int64            `json:"payer_id"`
	PayerUsername string           `json:"payer_username,omitempty"`
	Description   string           `json:"description"`
	Amount        float64          `json:"amount"`
	SplitType     string           `json:"split_type"`
	CreatedAt     time.Time        `json:"created_at"`
	Splits        []*SplitResponse `json:"splits,omitempty"`
}

func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:            e.ID,
		GroupID:       e.GroupID,
		PayerID:       e.PayerID,
		PayerUsername: e.PayerUsername,
		Description:   e.Description,
		Amount:        e.Amount,
		SplitType:     e.SplitType,
		CreatedAt:     e.CreatedAt,
	}
}

func (s *Split) ToResponse() *SplitResponse {
	return &SplitResponse{
		UserID:   s.OwedBy,
		Username: s.OwedByUsername,
		Amount:   s.Amount,
	}
}

func (ews *ExpenseWithSplits) ToResponse() *ExpenseResponse {
	resp := ews.Expense.ToResponse()
	for _, s := range ews.Splits {
		resp.Splits = append(resp.Splits, s.ToResponse())
	}
	return resp
}

// BalanceResponse reports the net amount one user owes another.
type BalanceResponse struct {
	User1ID int64   `json:"user1_id"`
	User2ID int64   `json:"user2_id"`
	Amount  float64 `json:"amount"` // positive: user1 owes user2, negative: user2 owes user1
}
