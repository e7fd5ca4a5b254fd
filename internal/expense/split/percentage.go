package split

import "math"

// PercentageStrategy gives each participant a share proportional to their
// percentage of the total. The percentages must sum to 100.
type PercentageStrategy struct{}

func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

func (s *PercentageStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}

	var sum float64
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		sum += *p.Percentage
	}

	if math.Abs(sum-100) > epsilon {
		return ErrInvalidPercentages
	}

	return nil
}

func (s *PercentageStrategy) Calculate(totalAmount float64, payerID int64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	debtors := withoutPayer(payerID, participants)
	if len(debtors) == 0 {
		return []Output{}, nil
	}

	outputs := make([]Output, len(debtors))
	var distributed float64
	for i, d := range debtors {
		amount := round2(totalAmount * (*d.Percentage) / 100)
		distributed += amount
		outputs[i] = Output{
			UserID:     d.UserID,
			AmountOwed: amount,
		}
	}

	// Per-share rounding can leave the debtor total a cent or two off what
	// they collectively owe; assign the difference to the last debtor.
	var payerPercentage float64
	for _, p := range participants {
		if p.UserID == payerID && p.Percentage != nil {
			payerPercentage = *p.Percentage
			break
		}
	}
	expected := round2(totalAmount * (100 - payerPercentage) / 100)
	if diff := round2(expected - distributed); diff != 0 {
		last := len(outputs) - 1
		outputs[last].AmountOwed = round2(outputs[last].AmountOwed + diff)
	}

	return outputs, nil
}
