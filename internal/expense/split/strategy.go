package split

import (
	"errors"
	"fmt"
	"math"
)

// Type identifies a split strategy.
type Type string

const (
	TypeEqual      Type = "EQUAL"
	TypePercentage Type = "PERCENTAGE"
	TypeExact      Type = "EXACT"
)

// Input represents a participant in a split with the optional per-participant
// value the strategy needs (percentage or exact amount).
type Input struct {
	UserID     int64    `json:"user_id"`
	Percentage *float64 `json:"percentage,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
}

// Output is the calculated share for a single participant.
type Output struct {
	UserID     int64   `json:"user_id"`
	AmountOwed float64 `json:"amount_owed"`
}

// Strategy turns an expense amount into per-participant shares. All
// implementations are pure and stateless; for every strategy the emitted
// amounts for the debtors plus the payer's own share sum to the total.
type Strategy interface {
	// Calculate computes the amounts owed by each participant other than the
	// payer. The payer never owes themselves.
	Calculate(totalAmount float64, payerID int64, participants []Input) ([]Output, error)

	// Type returns the tag this strategy is registered under.
	Type() Type

	// Validate checks the inputs without computing anything.
	Validate(totalAmount float64, participants []Input) error
}

// Factory resolves a split type tag to its strategy. The set is closed:
// three strategies, no registration mechanism.
type Factory struct{}

// NewFactory creates a strategy factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy for the given tag.
func (f *Factory) Create(t Type) (Strategy, error) {
	switch t {
	case TypeEqual:
		return &EqualStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	case TypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", t)
	}
}

// CreateFromString resolves a raw request tag.
func (f *Factory) CreateFromString(t string) (Strategy, error) {
	return f.Create(Type(t))
}

var (
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts do not sum to total expense")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

// epsilon for floating comparisons of money and percentages.
const epsilon = 0.01

// round2 rounds to 2 decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// withoutPayer removes the payer from the participant list; they do not owe
// themselves.
func withoutPayer(payerID int64, participants []Input) []Input {
	debtors := make([]Input, 0, len(participants))
	for _, p := range participants {
		if p.UserID != payerID {
			debtors = append(debtors, p)
		}
	}
	return debtors
}
