package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/parthg/splitwise/internal/balance"
	"github.com/parthg/splitwise/internal/group"
	"github.com/parthg/splitwise/internal/user"
)

var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrSamePayerPayee     = errors.New("payer and payee cannot be the same user")
	ErrPayerNotFound      = errors.New("payer not found")
	ErrPayeeNotFound      = errors.New("payee not found")
	ErrNoDuesExist        = errors.New("no dues exist between these users")
	ErrSettleExceedsDue   = errors.New("settlement amount exceeds dues")
)

type Store interface {
	Create(ctx context.Context, groupID, paidBy, paidTo int64, amount float64) (*Settlement, error)
	GetByID(ctx context.Context, id int64) (*Settlement, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Settlement, error)
	ListPaidBy(ctx context.Context, userID int64) ([]*Settlement, error)
	ListPaidTo(ctx context.Context, userID int64) ([]*Settlement, error)
	UpdateAmount(ctx context.Context, id int64, amount float64) (*Settlement, error)
	Delete(ctx context.Context, id int64) error
}

type GroupStore interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// BalanceProvider computes the net dues between two users of a group. A
// positive result means the first user owes the second. The Excluding variant
// ignores one settlement so an edit is not counted against itself.
type BalanceProvider interface {
	BalanceBetweenUsers(ctx context.Context, groupID, a, b int64) (float64, error)
	BalanceBetweenUsersExcluding(ctx context.Context, groupID, a, b, excludeSettlementID int64) (float64, error)
}

// Notifier delivers user-facing notifications. May be nil.
type Notifier interface {
	Notify(ctx context.Context, userID int64, notifType, message string)
}

type Service struct {
	store    Store
	groups   GroupStore
	users    UserStore
	balances BalanceProvider
	notifier Notifier
}

func NewService(store Store, groups GroupStore, users UserStore, balances BalanceProvider, notifier Notifier) *Service {
	return &Service{
		store:    store,
		groups:   groups,
		users:    users,
		balances: balances,
		notifier: notifier,
	}
}

// Create records a settlement after checking real dues exist and the amount
// does not overshoot them. The same-user check runs before any lookups.
func (s *Service) Create(ctx context.Context, req *CreateSettlementRequest) (*Settlement, error) {
	if req.PaidBy == req.PaidTo {
		return nil, ErrSamePayerPayee
	}

	payer, err := s.users.GetByID(ctx, req.PaidBy)
	if err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, ErrPayerNotFound
	}
	payee, err := s.users.GetByID(ctx, req.PaidTo)
	if err != nil {
		return nil, err
	}
	if payee == nil {
		return nil, ErrPayeeNotFound
	}

	g, err := s.groups.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, group.ErrGroupNotFound
	}

	due, err := s.balances.BalanceBetweenUsers(ctx, req.GroupID, req.PaidBy, req.PaidTo)
	if err != nil {
		return nil, err
	}
	if err := checkDue(due, req.Amount); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, req.GroupID, req.PaidBy, req.PaidTo, req.Amount)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("%s settled %s%s with you", payer.Username,
			balance.CurrencyGlyph, decimal.NewFromFloat(req.Amount).StringFixed(2))
		s.notifier.Notify(ctx, req.PaidTo, "settlement_recorded", msg)
	}
	return created, nil
}

// Update changes a settlement's amount. The dues check excludes the
// settlement being edited, so it validates against what would be owed without
// it.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateSettlementRequest) (*Settlement, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrSettlementNotFound
	}

	due, err := s.balances.BalanceBetweenUsersExcluding(ctx, existing.GroupID, existing.PaidBy, existing.PaidTo, id)
	if err != nil {
		return nil, err
	}
	if err := checkDue(due, req.Amount); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateAmount(ctx, id, req.Amount)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSettlementNotFound
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSettlementNotFound
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrSettlementNotFound
	}
	return existing, nil
}

func (s *Service) ListByGroup(ctx context.Context, groupID int64) ([]*Settlement, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, group.ErrGroupNotFound
	}
	return s.store.ListByGroup(ctx, groupID)
}

func (s *Service) ListPaidBy(ctx context.Context, userID int64) ([]*Settlement, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListPaidBy(ctx, userID)
}

func (s *Service) ListPaidTo(ctx context.Context, userID int64) ([]*Settlement, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListPaidTo(ctx, userID)
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return user.ErrUserNotFound
	}
	return nil
}

// checkDue rejects settlements against a non-positive due and settlements
// larger than the due, reporting the remaining due in the error.
func checkDue(due, amount float64) error {
	if due <= balance.Epsilon {
		return ErrNoDuesExist
	}
	if amount > due+balance.Epsilon {
		return fmt.Errorf("%w. due amount: %s%s", ErrSettleExceedsDue,
			balance.CurrencyGlyph, decimal.NewFromFloat(due).StringFixed(2))
	}
	return nil
}
