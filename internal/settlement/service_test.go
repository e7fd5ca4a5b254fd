package settlement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/parthg/splitwise/internal/group"
	"github.com/parthg/splitwise/internal/user"
)

type fakeStore struct {
	nextID      int64
	settlements map[int64]*Settlement
}

func newFakeStore() *fakeStore {
	return &fakeStore{settlements: make(map[int64]*Settlement)}
}

func (f *fakeStore) Create(_ context.Context, groupID, paidBy, paidTo int64, amount float64) (*Settlement, error) {
	f.nextID++
	s := &Settlement{ID: f.nextID, GroupID: groupID, PaidBy: paidBy, PaidTo: paidTo, Amount: amount, CreatedAt: time.Now()}
	f.settlements[s.ID] = s
	return s, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Settlement, error) {
	return f.settlements[id], nil
}

func (f *fakeStore) ListByGroup(_ context.Context, groupID int64) ([]*Settlement, error) {
	var out []*Settlement
	for _, s := range f.settlements {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPaidBy(_ context.Context, userID int64) ([]*Settlement, error) {
	var out []*Settlement
	for _, s := range f.settlements {
		if s.PaidBy == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPaidTo(_ context.Context, userID int64) ([]*Settlement, error) {
	var out []*Settlement
	for _, s := range f.settlements {
		if s.PaidTo == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAmount(_ context.Context, id int64, amount float64) (*Settlement, error) {
	s, ok := f.settlements[id]
	if !ok {
		return nil, nil
	}
	s.Amount = amount
	return s, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.settlements, id)
	return nil
}

type fakeGroups struct {
	groups map[int64]*group.Group
}

func (f *fakeGroups) GetByID(_ context.Context, id int64) (*group.Group, error) {
	return f.groups[id], nil
}

type fakeUsers struct {
	users map[int64]*user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	return f.users[id], nil
}

type fakeBalances struct {
	due           float64
	dueExcluding  float64
	lastExcludeID int64
}

func (f *fakeBalances) BalanceBetweenUsers(_ context.Context, groupID, a, b int64) (float64, error) {
	return f.due, nil
}

func (f *fakeBalances) BalanceBetweenUsersExcluding(_ context.Context, groupID, a, b, excludeID int64) (float64, error) {
	f.lastExcludeID = excludeID
	return f.dueExcluding, nil
}

func newTestService(due float64) (*Service, *fakeStore, *fakeBalances) {
	store := newFakeStore()
	groups := &fakeGroups{groups: map[int64]*group.Group{1: {ID: 1, Name: "Goa Trip"}}}
	users := &fakeUsers{users: map[int64]*user.User{
		1: {ID: 1, Username: "Parth"},
		2: {ID: 2, Username: "Aarush"},
	}}
	balances := &fakeBalances{due: due}
	return NewService(store, groups, users, balances, nil), store, balances
}

func TestCreateSamePayerPayee(t *testing.T) {
	svc, _, _ := newTestService(100)

	// The same-user check runs before any lookups, so even unknown ids hit it.
	_, err := svc.Create(context.Background(), &CreateSettlementRequest{
		GroupID: 99, PaidBy: 42, PaidTo: 42, Amount: 10,
	})
	if !errors.Is(err, ErrSamePayerPayee) {
		t.Fatalf("expected same payer/payee error, got %v", err)
	}
}

func TestCreateLookupFailures(t *testing.T) {
	svc, _, _ := newTestService(100)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateSettlementRequest{GroupID: 1, PaidBy: 99, PaidTo: 1, Amount: 10})
	if !errors.Is(err, ErrPayerNotFound) {
		t.Fatalf("expected payer not found, got %v", err)
	}

	_, err = svc.Create(ctx, &CreateSettlementRequest{GroupID: 1, PaidBy: 1, PaidTo: 99, Amount: 10})
	if !errors.Is(err, ErrPayeeNotFound) {
		t.Fatalf("expected payee not found, got %v", err)
	}

	_, err = svc.Create(ctx, &CreateSettlementRequest{GroupID: 99, PaidBy: 1, PaidTo: 2, Amount: 10})
	if !errors.Is(err, group.ErrGroupNotFound) {
		t.Fatalf("expected group not found, got %v", err)
	}
}

func TestCreateNoDues(t *testing.T) {
	svc, _, _ := newTestService(0)

	_, err := svc.Create(context.Background(), &CreateSettlementRequest{
		GroupID: 1, PaidBy: 2, PaidTo: 1, Amount: 10,
	})
	if !errors.Is(err, ErrNoDuesExist) {
		t.Fatalf("expected no dues error, got %v", err)
	}
}

func TestCreateExceedsDue(t *testing.T) {
	svc, _, _ := newTestService(100)

	_, err := svc.Create(context.Background(), &CreateSettlementRequest{
		GroupID: 1, PaidBy: 2, PaidTo: 1, Amount: 150,
	})
	if !errors.Is(err, ErrSettleExceedsDue) {
		t.Fatalf("expected exceeds-due error, got %v", err)
	}
	if !strings.Contains(err.Error(), "due amount: ₹100.00") {
		t.Errorf("error should carry the remaining due, got %q", err.Error())
	}
}

func TestCreatePartialSettlement(t *testing.T) {
	svc, store, _ := newTestService(150)

	created, err := svc.Create(context.Background(), &CreateSettlementRequest{
		GroupID: 1, PaidBy: 2, PaidTo: 1, Amount: 60,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Amount != 60 {
		t.Errorf("amount = %.2f, want 60", created.Amount)
	}
	if len(store.settlements) != 1 {
		t.Errorf("expected settlement persisted")
	}
}

func TestUpdateExcludesOwnSettlement(t *testing.T) {
	svc, store, balances := newTestService(100)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateSettlementRequest{
		GroupID: 1, PaidBy: 2, PaidTo: 1, Amount: 40,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Without the edited settlement the full due is still open, so raising
	// the amount up to it is allowed.
	balances.dueExcluding = 100
	updated, err := svc.Update(ctx, created.ID, &UpdateSettlementRequest{Amount: 100})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if balances.lastExcludeID != created.ID {
		t.Errorf("dues recomputed excluding id %d, want %d", balances.lastExcludeID, created.ID)
	}
	if updated.Amount != 100 {
		t.Errorf("amount = %.2f, want 100", updated.Amount)
	}
	if store.settlements[created.ID].Amount != 100 {
		t.Errorf("stored amount not updated")
	}

	_, err = svc.Update(ctx, created.ID, &UpdateSettlementRequest{Amount: 120})
	if !errors.Is(err, ErrSettleExceedsDue) {
		t.Fatalf("expected exceeds-due error, got %v", err)
	}

	_, err = svc.Update(ctx, 999, &UpdateSettlementRequest{Amount: 10})
	if !errors.Is(err, ErrSettlementNotFound) {
		t.Fatalf("expected settlement not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, store, _ := newTestService(100)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateSettlementRequest{
		GroupID: 1, PaidBy: 2, PaidTo: 1, Amount: 40,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, 999); !errors.Is(err, ErrSettlementNotFound) {
		t.Fatalf("expected settlement not found, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.settlements) != 0 {
		t.Errorf("expected settlement removed")
	}
}
