package group

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/parthg/splitwise/internal/user"
)

type fakeStore struct {
	nextID  int64
	groups  map[int64]*Group
	members map[int64]map[int64]bool
	deleted []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:  make(map[int64]*Group),
		members: make(map[int64]map[int64]bool),
	}
}

func (f *fakeStore) Create(_ context.Context, name string) (*Group, error) {
	f.nextID++
	g := &Group{ID: f.nextID, Name: name, CreatedAt: time.Now()}
	f.groups[g.ID] = g
	f.members[g.ID] = make(map[int64]bool)
	return g, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Group, error) {
	return f.groups[id], nil
}

func (f *fakeStore) ListByUserID(_ context.Context, userID int64) ([]*Group, error) {
	var out []*Group
	for id, members := range f.members {
		if members[userID] {
			out = append(out, f.groups[id])
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.groups, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) AddMember(_ context.Context, groupID, userID int64) (*Member, error) {
	f.members[groupID][userID] = true
	return &Member{GroupID: groupID, UserID: userID, JoinedAt: time.Now()}, nil
}

func (f *fakeStore) GetMembers(_ context.Context, groupID int64) ([]*Member, error) {
	var out []*Member
	for userID := range f.members[groupID] {
		out = append(out, &Member{GroupID: groupID, UserID: userID})
	}
	return out, nil
}

func (f *fakeStore) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	return f.members[groupID][userID], nil
}

func (f *fakeStore) RemoveMember(_ context.Context, groupID, userID int64) error {
	delete(f.members[groupID], userID)
	return nil
}

func (f *fakeStore) DeleteMembers(_ context.Context, groupID int64) error {
	delete(f.members, groupID)
	return nil
}

type fakeUsers struct {
	users map[int64]*user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	return f.users[id], nil
}

type fakeDues struct {
	pending bool
}

func (f *fakeDues) HasOutstandingBalances(_ context.Context, groupID int64) (bool, error) {
	return f.pending, nil
}

type purgeRecorder struct {
	calls []string
}

type fakeExpensePurger struct {
	rec *purgeRecorder
}

func (f *fakeExpensePurger) DeleteByGroup(_ context.Context, groupID int64) error {
	f.rec.calls = append(f.rec.calls, "expenses.group")
	return nil
}

func (f *fakeExpensePurger) DeleteByGroupAndPayer(_ context.Context, groupID, payerID int64) error {
	f.rec.calls = append(f.rec.calls, "expenses.payer")
	return nil
}

type fakeSettlementPurger struct {
	rec *purgeRecorder
}

func (f *fakeSettlementPurger) DeleteByGroup(_ context.Context, groupID int64) error {
	f.rec.calls = append(f.rec.calls, "settlements.group")
	return nil
}

func (f *fakeSettlementPurger) DeleteByGroupAndUser(_ context.Context, groupID, userID int64) error {
	f.rec.calls = append(f.rec.calls, "settlements.user")
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeDues, *purgeRecorder) {
	store := newFakeStore()
	users := &fakeUsers{users: map[int64]*user.User{
		1: {ID: 1, Username: "Parth"},
		2: {ID: 2, Username: "Aarush"},
		3: {ID: 3, Username: "Vicky"},
	}}
	dues := &fakeDues{}
	rec := &purgeRecorder{}
	svc := NewService(store, users, dues, &fakeExpensePurger{rec: rec}, &fakeSettlementPurger{rec: rec})
	return svc, store, dues, rec
}

func TestCreateValidatesMembers(t *testing.T) {
	svc, store, _, _ := newTestService()

	_, err := svc.Create(context.Background(), &CreateGroupRequest{
		Name: "Goa Trip", MemberIDs: []int64{1, 9},
	})
	if !errors.Is(err, user.ErrUserNotFound) || !strings.Contains(err.Error(), "with ID 9") {
		t.Fatalf("expected user not found naming id 9, got %v", err)
	}
	if len(store.groups) != 0 {
		t.Errorf("nothing should be persisted when validation fails")
	}
}

func TestCreateAddsMembers(t *testing.T) {
	svc, store, _, _ := newTestService()

	g, err := svc.Create(context.Background(), &CreateGroupRequest{
		Name: "Goa Trip", MemberIDs: []int64{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(store.members[g.ID]) != 3 {
		t.Errorf("expected 3 members, got %d", len(store.members[g.ID]))
	}
}

func TestAddMember(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	g, err := svc.Create(ctx, &CreateGroupRequest{Name: "Flat", MemberIDs: []int64{1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.AddMember(ctx, 99, 2); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected group not found, got %v", err)
	}
	if _, err := svc.AddMember(ctx, g.ID, 99); !errors.Is(err, user.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := svc.AddMember(ctx, g.ID, 2); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, err := svc.AddMember(ctx, g.ID, 2); !errors.Is(err, ErrUserAlreadyInGroup) {
		t.Fatalf("expected already-in-group error, got %v", err)
	}
}

func TestListByUserID(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.ListByUserID(ctx, 99); !errors.Is(err, user.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := svc.ListByUserID(ctx, 3); !errors.Is(err, ErrNoGroupFound) {
		t.Fatalf("expected no groups error, got %v", err)
	}

	if _, err := svc.Create(ctx, &CreateGroupRequest{Name: "Flat", MemberIDs: []int64{3}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	groups, err := svc.ListByUserID(ctx, 3)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("expected 1 group, got %d", len(groups))
	}
}

func TestRemoveMemberRefusedWithPendingDues(t *testing.T) {
	svc, store, dues, rec := newTestService()
	ctx := context.Background()

	g, err := svc.Create(ctx, &CreateGroupRequest{Name: "Flat", MemberIDs: []int64{1, 2}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	dues.pending = true

	if err := svc.RemoveMember(ctx, g.ID, 2); !errors.Is(err, ErrUserWithPendingDues) {
		t.Fatalf("expected pending dues error, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("no cascade deletes expected, got %v", rec.calls)
	}
	if !store.members[g.ID][2] {
		t.Errorf("membership must be untouched")
	}
}

func TestRemoveMemberCascades(t *testing.T) {
	svc, store, _, rec := newTestService()
	ctx := context.Background()

	g, err := svc.Create(ctx, &CreateGroupRequest{Name: "Flat", MemberIDs: []int64{1, 2}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.RemoveMember(ctx, g.ID, 99); !errors.Is(err, user.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if err := svc.RemoveMember(ctx, g.ID, 3); !errors.Is(err, ErrUserNotInGroup) {
		t.Fatalf("expected not-in-group error, got %v", err)
	}

	if err := svc.RemoveMember(ctx, g.ID, 2); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	want := []string{"settlements.user", "expenses.payer"}
	if len(rec.calls) != 2 || rec.calls[0] != want[0] || rec.calls[1] != want[1] {
		t.Errorf("cascade order = %v, want %v", rec.calls, want)
	}
	if store.members[g.ID][2] {
		t.Errorf("membership should be removed")
	}
}

func TestDeleteRefusedWithPendingDues(t *testing.T) {
	svc, store, dues, _ := newTestService()
	ctx := context.Background()

	g, err := svc.Create(ctx, &CreateGroupRequest{Name: "Flat", MemberIDs: []int64{1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	dues.pending = true

	if err := svc.Delete(ctx, g.ID); !errors.Is(err, ErrGroupHasPendingDues) {
		t.Fatalf("expected pending dues error, got %v", err)
	}
	if _, ok := store.groups[g.ID]; !ok {
		t.Errorf("group must be untouched")
	}
}

func TestDeleteCascades(t *testing.T) {
	svc, store, _, rec := newTestService()
	ctx := context.Background()

	if err := svc.Delete(ctx, 99); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected group not found, got %v", err)
	}

	g, err := svc.Create(ctx, &CreateGroupRequest{Name: "Flat", MemberIDs: []int64{1, 2}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []string{"settlements.group", "expenses.group"}
	if len(rec.calls) != 2 || rec.calls[0] != want[0] || rec.calls[1] != want[1] {
		t.Errorf("cascade order = %v, want %v", rec.calls, want)
	}
	if _, ok := store.groups[g.ID]; ok {
		t.Errorf("group should be deleted")
	}
	if _, ok := store.members[g.ID]; ok {
		t.Errorf("memberships should be deleted")
	}
}
