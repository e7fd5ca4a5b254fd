package split

import "math"

// ExactStrategy passes through the caller-specified amount for each
// participant. The amounts must sum to the expense total.
type ExactStrategy struct{}

func (s *ExactStrategy) Type() Type {
	return TypeExact
}

func (s *ExactStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}

	var sum float64
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeAmount
		}
		sum += *p.Amount
	}

	if math.Abs(sum-totalAmount) > epsilon {
		return ErrInvalidExactAmounts
	}

	return nil
}

func (s *ExactStrategy) Calculate(totalAmount float64, payerID int64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	debtors := withoutPayer(payerID, participants)
	outputs := make([]Output, len(debtors))
	for i, d := range debtors {
		outputs[i] = Output{
			UserID:     d.UserID,
			AmountOwed: round2(*d.Amount),
		}
	}

	return outputs, nil
}
