package split

import "math"

// EqualStrategy divides the amount evenly across the participants. The payer
// is part of the divisor only when explicitly listed as a participant.
type EqualStrategy struct{}

func (s *EqualStrategy) Type() Type {
	return TypeEqual
}

func (s *EqualStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Calculate works in integer cents: every participant gets the floor share
// and the leftover cents go to the first participants in input order, so the
// shares always sum exactly to the total and repeated runs are reproducible.
func (s *EqualStrategy) Calculate(totalAmount float64, payerID int64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	totalCents := int64(math.Round(totalAmount * 100))
	n := int64(len(participants))
	shareCents := totalCents / n
	leftover := totalCents % n

	outputs := make([]Output, 0, len(participants))
	for i, p := range participants {
		cents := shareCents
		if int64(i) < leftover {
			cents++
		}
		if p.UserID == payerID {
			continue
		}
		outputs = append(outputs, Output{
			UserID:     p.UserID,
			AmountOwed: float64(cents) / 100,
		})
	}

	return outputs, nil
}
