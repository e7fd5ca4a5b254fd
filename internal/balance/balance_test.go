package balance

import (
	"math"
	"testing"
)

const (
	parth  int64 = 1
	aarush int64 = 2
	vicky  int64 = 3
)

var names = map[int64]string{
	parth:  "Parth",
	aarush: "Aarush",
	vicky:  "Vicky",
}

func TestGroupBalances_EqualSplit(t *testing.T) {
	// Parth pays 800, split 400/400 to Aarush and Vicky.
	expenses := []Expense{{ID: 1, PayerID: parth, Amount: 800}}
	splits := []Split{
		{ExpenseID: 1, OwedBy: aarush, Amount: 400},
		{ExpenseID: 1, OwedBy: vicky, Amount: 400},
	}

	got := GroupBalances(expenses, splits)
	if len(got) != 2 {
		t.Fatalf("got %d balances, want 2", len(got))
	}
	for _, b := range got {
		if b.CreditorID != parth {
			t.Errorf("creditor = %d, want Parth", b.CreditorID)
		}
		if math.Abs(b.Amount-400) > Epsilon {
			t.Errorf("amount = %v, want 400", b.Amount)
		}
	}
	if want := "Aarush owes Parth ₹400.00"; got[0].Format(names) != want {
		t.Errorf("Format = %q, want %q", got[0].Format(names), want)
	}
	if want := "Vicky owes Parth ₹400.00"; got[1].Format(names) != want {
		t.Errorf("Format = %q, want %q", got[1].Format(names), want)
	}
}

func TestGroupBalances_CrossExpenseNetting(t *testing.T) {
	// Expense A: Parth pays 300, 150/150 to Aarush and Vicky.
	// Expense B: Vicky pays 200, 100 to Parth.
	// Net between Vicky and Parth: 150 - 100 = 50 owed by Vicky.
	expenses := []Expense{
		{ID: 1, PayerID: parth, Amount: 300},
		{ID: 2, PayerID: vicky, Amount: 200},
	}
	splits := []Split{
		{ExpenseID: 1, OwedBy: aarush, Amount: 150},
		{ExpenseID: 1, OwedBy: vicky, Amount: 150},
		{ExpenseID: 2, OwedBy: parth, Amount: 100},
	}

	got := GroupBalances(expenses, splits)
	if len(got) != 2 {
		t.Fatalf("got %d balances, want 2", len(got))
	}
	// First-encounter order: (Parth,Aarush) then (Parth,Vicky).
	if got[0].DebtorID != aarush || got[0].CreditorID != parth || math.Abs(got[0].Amount-150) > Epsilon {
		t.Errorf("balances[0] = %+v, want Aarush owes Parth 150", got[0])
	}
	if got[1].DebtorID != vicky || got[1].CreditorID != parth || math.Abs(got[1].Amount-50) > Epsilon {
		t.Errorf("balances[1] = %+v, want Vicky owes Parth 50", got[1])
	}
}

func TestGroupBalances_FullyCanceledPairOmitted(t *testing.T) {
	expenses := []Expense{
		{ID: 1, PayerID: parth, Amount: 100},
		{ID: 2, PayerID: aarush, Amount: 100},
	}
	splits := []Split{
		{ExpenseID: 1, OwedBy: aarush, Amount: 100},
		{ExpenseID: 2, OwedBy: parth, Amount: 100},
	}

	if got := GroupBalances(expenses, splits); len(got) != 0 {
		t.Errorf("got %d balances, want 0 for a fully canceled pair", len(got))
	}
}

func TestGroupBalances_NoExpenses(t *testing.T) {
	if got := GroupBalances(nil, nil); len(got) != 0 {
		t.Errorf("got %d balances, want 0", len(got))
	}
}

func TestGroupBalances_DeterministicOrder(t *testing.T) {
	expenses := []Expense{
		{ID: 1, PayerID: parth, Amount: 300},
		{ID: 2, PayerID: vicky, Amount: 90},
	}
	splits := []Split{
		{ExpenseID: 1, OwedBy: vicky, Amount: 150},
		{ExpenseID: 1, OwedBy: aarush, Amount: 150},
		{ExpenseID: 2, OwedBy: aarush, Amount: 45},
	}

	first := GroupBalances(expenses, splits)
	for i := 0; i < 10; i++ {
		again := GroupBalances(expenses, splits)
		if len(again) != len(first) {
			t.Fatalf("run %d: length %d, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: balances[%d] = %+v, want %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestUserBalances_PartialSettlement(t *testing.T) {
	// Aarush owes Parth 150, settles 100, leaving 50.
	expenses := []Expense{{ID: 1, PayerID: parth, Amount: 300}}
	splits := []Split{{ExpenseID: 1, OwedBy: aarush, Amount: 150}}
	settlements := []Settlement{{PaidBy: aarush, PaidTo: parth, Amount: 100}}

	got := UserBalances(expenses, splits, settlements, aarush)
	if len(got) != 1 {
		t.Fatalf("got %d balances, want 1", len(got))
	}
	if want := "Aarush owes Parth ₹50.00"; got[0].Format(names) != want {
		t.Errorf("Format = %q, want %q", got[0].Format(names), want)
	}
}

func TestUserBalances_FullSettlementOmitsPair(t *testing.T) {
	expenses := []Expense{{ID: 1, PayerID: parth, Amount: 300}}
	splits := []Split{{ExpenseID: 1, OwedBy: aarush, Amount: 150}}
	settlements := []Settlement{{PaidBy: aarush, PaidTo: parth, Amount: 150}}

	if got := UserBalances(expenses, splits, settlements, aarush); len(got) != 0 {
		t.Errorf("got %d balances, want 0 after full settlement", len(got))
	}
}

func TestUserBalances_DoubleSidedExpenseAndSettlement(t *testing.T) {
	// Parth pays 300 (Aarush owes 150), Aarush pays 200 (Parth owes 100),
	// Aarush settles 20: net 150 - 100 - 20 = 30.
	expenses := []Expense{
		{ID: 1, PayerID: parth, Amount: 300},
		{ID: 2, PayerID: aarush, Amount: 200},
	}
	splits := []Split{
		{ExpenseID: 1, OwedBy: aarush, Amount: 150},
		{ExpenseID: 2, OwedBy: parth, Amount: 100},
	}
	settlements := []Settlement{{PaidBy: aarush, PaidTo: parth, Amount: 20}}

	got := UserBalances(expenses, splits, settlements, aarush)
	if len(got) != 1 {
		t.Fatalf("got %d balances, want 1", len(got))
	}
	if want := "Aarush owes Parth ₹30.00"; got[0].Format(names) != want {
		t.Errorf("Format = %q, want %q", got[0].Format(names), want)
	}
}

func TestUserBalances_FiltersOtherPairs(t *testing.T) {
	expenses := []Expense{{ID: 1, PayerID: parth, Amount: 800}}
	splits := []Split{
		{ExpenseID: 1, OwedBy: aarush, Amount: 400},
		{ExpenseID: 1, OwedBy: vicky, Amount: 400},
	}

	got := UserBalances(expenses, splits, nil, vicky)
	if len(got) != 1 {
		t.Fatalf("got %d balances, want 1", len(got))
	}
	if got[0].DebtorID != vicky || got[0].CreditorID != parth {
		t.Errorf("balance = %+v, want Vicky owes Parth", got[0])
	}
}

func TestBetween_Directions(t *testing.T) {
	expenses := []Expense{{ID: 1, PayerID: aarush, Amount: 300}}
	splits := []Split{{ExpenseID: 1, OwedBy: parth, Amount: 150}}

	if got := Between(expenses, splits, nil, parth, aarush); math.Abs(got-150) > Epsilon {
		t.Errorf("Between(parth, aarush) = %v, want 150", got)
	}
	if got := Between(expenses, splits, nil, aarush, parth); math.Abs(got+150) > Epsilon {
		t.Errorf("Between(aarush, parth) = %v, want -150", got)
	}
}

func TestBetween_Antisymmetric(t *testing.T) {
	expenses := []Expense{
		{ID: 1, PayerID: parth, Amount: 300},
		{ID: 2, PayerID: aarush, Amount: 200},
	}
	splits := []Split{
		{ExpenseID: 1, OwedBy: aarush, Amount: 150},
		{ExpenseID: 2, OwedBy: parth, Amount: 100},
	}
	settlements := []Settlement{{PaidBy: aarush, PaidTo: parth, Amount: 25}}

	ab := Between(expenses, splits, settlements, parth, aarush)
	ba := Between(expenses, splits, settlements, aarush, parth)
	if math.Abs(ab+ba) > 1e-9 {
		t.Errorf("Between is not antisymmetric: %v vs %v", ab, ba)
	}
}

func TestBetween_NoDues(t *testing.T) {
	if got := Between(nil, nil, nil, parth, aarush); got != 0 {
		t.Errorf("Between with no records = %v, want 0", got)
	}
}

func TestBetween_SettlementReducesDebt(t *testing.T) {
	expenses := []Expense{{ID: 1, PayerID: parth, Amount: 300}}
	splits := []Split{{ExpenseID: 1, OwedBy: aarush, Amount: 150}}
	settlements := []Settlement{{PaidBy: aarush, PaidTo: parth, Amount: 100}}

	if got := Between(expenses, splits, settlements, aarush, parth); math.Abs(got-50) > Epsilon {
		t.Errorf("Between after settlement = %v, want 50", got)
	}
}
