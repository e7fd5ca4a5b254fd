// Package balance nets expense splits and settlements into pairwise
// "who owes whom" balances. It is pure computation over plain records;
// loading those records is the caller's problem.
package balance

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used when deciding a pair has settled to zero.
const Epsilon = 0.01

// CurrencyGlyph prefixes every rendered amount.
const CurrencyGlyph = "₹"

// Expense is the minimal expense record needed for balance computation.
type Expense struct {
	ID      int64
	PayerID int64
	Amount  float64
}

// Split is one participant's share of one expense.
type Split struct {
	ExpenseID int64
	OwedBy    int64
	Amount    float64
}

// Settlement is a recorded repayment from PaidBy to PaidTo.
type Settlement struct {
	PaidBy int64
	PaidTo int64
	Amount float64
}

// PairBalance is a single directed fact: debtor owes creditor amount.
type PairBalance struct {
	DebtorID   int64
	CreditorID int64
	Amount     float64
}

// Format renders the fact as "<debtor> owes <creditor> ₹<amount>" with
// exactly two decimal places, resolving names from the given map.
func (b PairBalance) Format(names map[int64]string) string {
	amount := decimal.NewFromFloat(b.Amount).StringFixed(2)
	return fmt.Sprintf("%s owes %s %s%s", names[b.DebtorID], names[b.CreditorID], CurrencyGlyph, amount)
}

// pair is the canonical unordered key for two members: low < high always.
type pair struct {
	low, high int64
}

// ledger accumulates one signed net value per unordered pair. Positive means
// low owes high. Pairs are remembered in first-encounter order so emission is
// deterministic regardless of map iteration.
type ledger struct {
	nets  map[pair]float64
	order []pair
}

func newLedger() *ledger {
	return &ledger{nets: make(map[pair]float64)}
}

// add records a directed debt from debtor to creditor.
func (l *ledger) add(debtor, creditor int64, amount float64) {
	p := pair{low: debtor, high: creditor}
	sign := 1.0
	if p.low > p.high {
		p.low, p.high = p.high, p.low
		sign = -1.0
	}
	if _, seen := l.nets[p]; !seen {
		l.order = append(l.order, p)
	}
	l.nets[p] += sign * amount
}

// balances emits one fact per pair with a non-zero net, oriented so the
// emitted debtor is the one who owes, in first-encounter order.
func (l *ledger) balances() []PairBalance {
	out := make([]PairBalance, 0, len(l.order))
	for _, p := range l.order {
		net := l.nets[p]
		if math.Abs(net) < Epsilon {
			continue
		}
		if net > 0 {
			out = append(out, PairBalance{DebtorID: p.low, CreditorID: p.high, Amount: net})
		} else {
			out = append(out, PairBalance{DebtorID: p.high, CreditorID: p.low, Amount: -net})
		}
	}
	return out
}

// accumulate replays every split as a directed debt from the owing member to
// the expense's payer. Splits are grouped per expense and replayed in expense
// order so repeated runs over the same records give the same pair order.
func accumulate(expenses []Expense, splits []Split) *ledger {
	payers := make(map[int64]int64, len(expenses))
	byExpense := make(map[int64][]Split)
	for _, e := range expenses {
		payers[e.ID] = e.PayerID
	}
	for _, s := range splits {
		byExpense[s.ExpenseID] = append(byExpense[s.ExpenseID], s)
	}

	l := newLedger()
	for _, e := range expenses {
		for _, s := range byExpense[e.ID] {
			payer, ok := payers[s.ExpenseID]
			if !ok || s.OwedBy == payer {
				continue
			}
			l.add(s.OwedBy, payer, s.Amount)
		}
	}
	return l
}

// GroupBalances nets every split in a group into pairwise facts. Settlements
// are not applied here; this is the raw expense-derived view used by the
// pending-dues guards.
func GroupBalances(expenses []Expense, splits []Split) []PairBalance {
	return accumulate(expenses, splits).balances()
}

// UserBalances nets every split in a group, reduces each pair by the recorded
// settlements, and returns only the pairs involving the given member. A
// settlement strictly reduces the debt from PaidBy to PaidTo; amounts are
// checked against the outstanding balance at creation time, so a pair never
// flips sign past zero here.
func UserBalances(expenses []Expense, splits []Split, settlements []Settlement, memberID int64) []PairBalance {
	l := accumulate(expenses, splits)
	for _, s := range settlements {
		l.add(s.PaidTo, s.PaidBy, s.Amount)
	}

	var out []PairBalance
	for _, b := range l.balances() {
		if b.DebtorID == memberID || b.CreditorID == memberID {
			out = append(out, b)
		}
	}
	return out
}

// Between returns the signed net between exactly two members: positive means
// a owes b, negative means b owes a, zero means settled.
func Between(expenses []Expense, splits []Split, settlements []Settlement, a, b int64) float64 {
	payers := make(map[int64]int64, len(expenses))
	for _, e := range expenses {
		payers[e.ID] = e.PayerID
	}

	var net float64
	for _, s := range splits {
		payer, ok := payers[s.ExpenseID]
		if !ok {
			continue
		}
		switch {
		case s.OwedBy == a && payer == b:
			net += s.Amount
		case s.OwedBy == b && payer == a:
			net -= s.Amount
		}
	}
	for _, s := range settlements {
		switch {
		case s.PaidBy == a && s.PaidTo == b:
			net -= s.Amount
		case s.PaidBy == b && s.PaidTo == a:
			net += s.Amount
		}
	}
	return net
}
