package expense

import "time"

// Expense represents a posted expense in a group.
type Expense struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	PayerID     int64     `json:"payer_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	SplitType   string    `json:"split_type"` // EQUAL, PERCENTAGE, EXACT
	CreatedAt   time.Time `json:"created_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`
}

// Split is one participant's share of one expense. For a given expense the
// split amounts sum to the expense amount within rounding tolerance.
type Split struct {
	ID        int64   `json:"id"`
	ExpenseID int64   `json:"expense_id"`
	OwedBy    int64   `json:"owed_by"`
	Amount    float64 `json:"amount"`

	// Populated via JOIN
	OwedByUsername string `json:"owed_by_username,omitempty"`
}

// ExpenseWithSplits combines an expense with its calculated splits.
type ExpenseWithSplits struct {
	Expense *Expense `json:"expense"`
	Splits  []*Split `json:"splits"`
}
