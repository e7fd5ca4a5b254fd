package settlement

import "time"

// Settlement records a direct repayment from one group member to another.
type Settlement struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	PaidBy    int64     `json:"paid_by"`
	PaidTo    int64     `json:"paid_to"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`

	// Populated via JOIN
	PaidByUsername string `json:"paid_by_username,omitempty"`
	PaidToUsername string `json:"paid_to_username,omitempty"`
}
