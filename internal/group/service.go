package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/parthg/splitwise/internal/user"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrUserNotInGroup      = errors.New("user is not part of the group")
	ErrUserAlreadyInGroup  = errors.New("user already in group")
	ErrNoGroupFound        = errors.New("user is not part of any group")
	ErrUserWithPendingDues = errors.New("cannot remove user with unsettled balances")
	ErrGroupHasPendingDues = errors.New("cannot delete group with unsettled balances")
)

// Store is the persistence collaborator for groups and memberships.
type Store interface {
	Create(ctx context.Context, name string) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Group, error)
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID, userID int64) (*Member, error)
	GetMembers(ctx context.Context, groupID int64) ([]*Member, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
	DeleteMembers(ctx context.Context, groupID int64) error
}

// UserStore resolves user ids during validation.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// DuesChecker is the shared precondition used before any destructive group
// operation: removal and deletion are both refused while balances remain.
type DuesChecker interface {
	HasOutstandingBalances(ctx context.Context, groupID int64) (bool, error)
}

// ExpensePurger cascade-deletes expense records (and their splits).
type ExpensePurger interface {
	DeleteByGroup(ctx context.Context, groupID int64) error
	DeleteByGroupAndPayer(ctx context.Context, groupID, payerID int64) error
}

// SettlementPurger cascade-deletes settlement records.
type SettlementPurger interface {
	DeleteByGroup(ctx context.Context, groupID int64) error
	DeleteByGroupAndUser(ctx context.Context, groupID, userID int64) error
}

// Service handles group business logic
type Service struct {
	store       Store
	users       UserStore
	dues        DuesChecker
	expenses    ExpensePurger
	settlements SettlementPurger
}

// NewService creates a new group service with dependencies injected
func NewService(store Store, users UserStore, dues DuesChecker, expenses ExpensePurger, settlements SettlementPurger) *Service {
	return &Service{
		store:       store,
		users:       users,
		dues:        dues,
		expenses:    expenses,
		settlements: settlements,
	}
}

// Create creates a group with an initial member list. Every member id must
// resolve to an existing user before anything is persisted.
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	for _, id := range req.MemberIDs {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("%w with ID %d", user.ErrUserNotFound, id)
		}
	}

	group, err := s.store.Create(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	for _, id := range req.MemberIDs {
		if _, err := s.store.AddMember(ctx, group.ID, id); err != nil {
			return nil, err
		}
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*Member, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.store.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID int64) ([]*Group, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}

	groups, err := s.store.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNoGroupFound
	}

	return groups, nil
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, groupID, userID int64) (*Member, error) {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}

	isMember, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrUserAlreadyInGroup
	}

	return s.store.AddMember(ctx, groupID, userID)
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	return s.store.GetMembers(ctx, groupID)
}

// RemoveMember removes a user from a group. Removal is refused while the
// group has any unsettled balance; on success the user's settlements and
// expenses in the group are cascade-deleted along with the membership.
func (s *Service) RemoveMember(ctx context.Context, groupID, userID int64) error {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return user.ErrUserNotFound
	}

	isMember, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrUserNotInGroup
	}

	pending, err := s.dues.HasOutstandingBalances(ctx, groupID)
	if err != nil {
		return err
	}
	if pending {
		return ErrUserWithPendingDues
	}

	if err := s.settlements.DeleteByGroupAndUser(ctx, groupID, userID); err != nil {
		return err
	}
	if err := s.expenses.DeleteByGroupAndPayer(ctx, groupID, userID); err != nil {
		return err
	}

	return s.store.RemoveMember(ctx, groupID, userID)
}

// Delete removes a group and everything in it. Deletion is refused while any
// unsettled balance remains; otherwise settlements, expenses (with their
// splits) and memberships are removed before the group row.
func (s *Service) Delete(ctx context.Context, id int64) error {
	group, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}

	pending, err := s.dues.HasOutstandingBalances(ctx, id)
	if err != nil {
		return err
	}
	if pending {
		return ErrGroupHasPendingDues
	}

	if err := s.settlements.DeleteByGroup(ctx, id); err != nil {
		return err
	}
	if err := s.expenses.DeleteByGroup(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteMembers(ctx, id); err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}
