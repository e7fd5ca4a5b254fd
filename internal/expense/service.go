package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/parthg/splitwise/internal/balance"
	"github.com/parthg/splitwise/internal/expense/split"
	"github.com/parthg/splitwise/internal/group"
	"github.com/parthg/splitwise/internal/settlement"
	"github.com/parthg/splitwise/internal/user"
)

var (
	ErrExpenseNotFound         = errors.New("expense not found")
	ErrExpenseGroupMismatch    = errors.New("expense does not belong to the specified group")
	ErrExactCountMismatch      = errors.New("participants and exact amount count mismatch")
	ErrPercentageCountMismatch = errors.New("participants and percentages count mismatch")
	ErrInvalidAmount           = errors.New("expense amount must be positive")
)

// Store is the persistence surface the service needs for expenses and splits.
type Store interface {
	CreateExpense(ctx context.Context, groupID, payerID int64, description string, amount float64, splitType string) (*Expense, error)
	UpdateExpense(ctx context.Context, id, payerID int64, description string, amount float64, splitType string) (*Expense, error)
	GetExpenseByID(ctx context.Context, id int64) (*Expense, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Expense, error)
	ListByGroupAndPayer(ctx context.Context, groupID, payerID int64) ([]*Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	DeleteByGroup(ctx context.Context, groupID int64) error
	DeleteByGroupAndPayer(ctx context.Context, groupID, payerID int64) error
	CreateSplits(ctx context.Context, expenseID int64, outputs []split.Output) ([]*Split, error)
	GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error)
	GetSplitsByGroupID(ctx context.Context, groupID int64) ([]*Split, error)
	DeleteSplitsByExpenseID(ctx context.Context, expenseID int64) error
}

type GroupStore interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type SettlementStore interface {
	ListByGroup(ctx context.Context, groupID int64) ([]*settlement.Settlement, error)
}

// Notifier delivers user-facing notifications. May be nil.
type Notifier interface {
	Notify(ctx context.Context, userID int64, notifType, message string)
}

type Service struct {
	store       Store
	groups      GroupStore
	users       UserStore
	settlements SettlementStore
	factory     *split.Factory
	notifier    Notifier
}

func NewService(store Store, groups GroupStore, users UserStore, settlements SettlementStore, notifier Notifier) *Service {
	return &Service{
		store:       store,
		groups:      groups,
		users:       users,
		settlements: settlements,
		factory:     split.NewFactory(),
		notifier:    notifier,
	}
}

// AddExpense validates, calculates splits and persists an expense. Validation
// order is fixed: group, payer, participants (existence then membership),
// count consistency, then the strategy's own sum checks.
func (s *Service) AddExpense(ctx context.Context, req *AddExpenseRequest) (*ExpenseWithSplits, error) {
	strategy, err := s.validateExpense(ctx, req.GroupID, req.PayerID, req.Amount, req.SplitType, req.Participants, req.Values)
	if err != nil {
		return nil, err
	}

	inputs := buildInputs(req.SplitType, req.Participants, req.Values)
	outputs, err := strategy.Calculate(req.Amount, req.PayerID, inputs)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateExpense(ctx, req.GroupID, req.PayerID, req.Description, req.Amount, req.SplitType)
	if err != nil {
		return nil, err
	}

	splits, err := s.store.CreateSplits(ctx, created.ID, outputs)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("New expense %q of %s%s added", req.Description,
			balance.CurrencyGlyph, decimal.NewFromFloat(req.Amount).StringFixed(2))
		for _, sp := range splits {
			s.notifier.Notify(ctx, sp.OwedBy, "expense_added", msg)
		}
	}

	return &ExpenseWithSplits{Expense: created, Splits: splits}, nil
}

// UpdateExpense re-runs the full split pipeline and replaces the stored
// splits for the expense.
func (s *Service) UpdateExpense(ctx context.Context, expenseID int64, req *UpdateExpenseRequest) (*ExpenseWithSplits, error) {
	existing, err := s.store.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}

	strategy, err := s.validateExpense(ctx, existing.GroupID, req.PayerID, req.Amount, req.SplitType, req.Participants, req.Values)
	if err != nil {
		return nil, err
	}

	inputs := buildInputs(req.SplitType, req.Participants, req.Values)
	outputs, err := strategy.Calculate(req.Amount, req.PayerID, inputs)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateExpense(ctx, expenseID, req.PayerID, req.Description, req.Amount, req.SplitType)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrExpenseNotFound
	}

	if err := s.store.DeleteSplitsByExpenseID(ctx, expenseID); err != nil {
		return nil, err
	}
	splits, err := s.store.CreateSplits(ctx, expenseID, outputs)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithSplits{Expense: updated, Splits: splits}, nil
}

// DeleteExpense removes an expense and its splits after checking the expense
// actually belongs to the given group.
func (s *Service) DeleteExpense(ctx context.Context, groupID, expenseID int64) error {
	existing, err := s.store.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrExpenseNotFound
	}
	if existing.GroupID != groupID {
		return ErrExpenseGroupMismatch
	}

	if err := s.store.DeleteSplitsByExpenseID(ctx, expenseID); err != nil {
		return err
	}
	return s.store.DeleteExpense(ctx, expenseID)
}

func (s *Service) GetByGroup(ctx context.Context, groupID int64) ([]*Expense, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListByGroup(ctx, groupID)
}

func (s *Service) GetByGroupAndPayer(ctx context.Context, groupID, payerID int64) ([]*Expense, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, payerID); err != nil {
		return nil, err
	}
	return s.store.ListByGroupAndPayer(ctx, groupID, payerID)
}

// GetSplits returns the stored splits for an expense, checking that the
// expense belongs to the given group.
func (s *Service) GetSplits(ctx context.Context, groupID, expenseID int64) ([]*Split, error) {
	existing, err := s.store.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}
	if existing.GroupID != groupID {
		return nil, ErrExpenseGroupMismatch
	}
	return s.store.GetSplitsByExpenseID(ctx, expenseID)
}

// GroupBalances returns the net pairwise balances of a group as human-readable
// statements, derived from expenses and splits only.
func (s *Service) GroupBalances(ctx context.Context, groupID int64) ([]string, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	expenses, splits, err := s.loadGroupRecords(ctx, groupID)
	if err != nil {
		return nil, err
	}
	pairs := balance.GroupBalances(expenses, splits)

	names, err := s.resolveNames(ctx, groupID, pairs)
	if err != nil {
		return nil, err
	}

	statements := make([]string, 0, len(pairs))
	for _, p := range pairs {
		statements = append(statements, p.Format(names))
	}
	return statements, nil
}

// UserBalances returns the balances a member is involved in, reduced by the
// group's recorded settlements.
func (s *Service) UserBalances(ctx context.Context, groupID, userID int64) ([]string, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	expenses, splits, err := s.loadGroupRecords(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.loadSettlementRecords(ctx, groupID, 0)
	if err != nil {
		return nil, err
	}
	pairs := balance.UserBalances(expenses, splits, settlements, userID)

	names, err := s.resolveNames(ctx, groupID, pairs)
	if err != nil {
		return nil, err
	}

	statements := make([]string, 0, len(pairs))
	for _, p := range pairs {
		statements = append(statements, p.Format(names))
	}
	return statements, nil
}

// BalanceBetweenUsers returns the net amount user a owes user b after
// settlements. Negative means b owes a.
func (s *Service) BalanceBetweenUsers(ctx context.Context, groupID, a, b int64) (float64, error) {
	return s.balanceBetween(ctx, groupID, a, b, 0)
}

// BalanceBetweenUsersExcluding computes the same net amount while ignoring
// one settlement, so an edited settlement is not counted against itself.
func (s *Service) BalanceBetweenUsersExcluding(ctx context.Context, groupID, a, b, excludeSettlementID int64) (float64, error) {
	return s.balanceBetween(ctx, groupID, a, b, excludeSettlementID)
}

func (s *Service) balanceBetween(ctx context.Context, groupID, a, b, excludeSettlementID int64) (float64, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return 0, err
	}
	if err := s.requireUser(ctx, a); err != nil {
		return 0, err
	}
	if err := s.requireUser(ctx, b); err != nil {
		return 0, err
	}

	expenses, splits, err := s.loadGroupRecords(ctx, groupID)
	if err != nil {
		return 0, err
	}
	settlements, err := s.loadSettlementRecords(ctx, groupID, excludeSettlementID)
	if err != nil {
		return 0, err
	}
	return balance.Between(expenses, splits, settlements, a, b), nil
}

// HasOutstandingBalances reports whether any non-zero expense-derived pair
// balance exists in the group. Used as the precondition for removing members
// and deleting groups.
func (s *Service) HasOutstandingBalances(ctx context.Context, groupID int64) (bool, error) {
	expenses, splits, err := s.loadGroupRecords(ctx, groupID)
	if err != nil {
		return false, err
	}
	return len(balance.GroupBalances(expenses, splits)) > 0, nil
}

// validateExpense runs the ordered validation pipeline and resolves the
// split strategy.
func (s *Service) validateExpense(ctx context.Context, groupID, payerID int64, amount float64, splitType string, participants []int64, values []float64) (split.Strategy, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	payer, err := s.users.GetByID(ctx, payerID)
	if err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, fmt.Errorf("%w: payer with ID %d", user.ErrUserNotFound, payerID)
	}

	for _, id := range participants {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("%w: participant with ID %d", user.ErrUserNotFound, id)
		}
		member, err := s.groups.IsMember(ctx, groupID, id)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, fmt.Errorf("%w: user ID %d is not a member of the group", user.ErrUserNotFound, id)
		}
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	switch split.Type(splitType) {
	case split.TypeExact:
		if len(values) != len(participants) {
			return nil, ErrExactCountMismatch
		}
	case split.TypePercentage:
		if len(values) != len(participants) {
			return nil, ErrPercentageCountMismatch
		}
	}

	return s.factory.CreateFromString(splitType)
}

func (s *Service) requireGroup(ctx context.Context, groupID int64) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g == nil {
		return group.ErrGroupNotFound
	}
	return nil
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

func (s *Service) loadGroupRecords(ctx context.Context, groupID int64) ([]balance.Expense, []balance.Split, error) {
	expenses, err := s.store.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	splits, err := s.store.GetSplitsByGroupID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	be := make([]balance.Expense, 0, len(expenses))
	for _, e := range expenses {
		be = append(be, balance.Expense{ID: e.ID, PayerID: e.PayerID, Amount: e.Amount})
	}
	bs := make([]balance.Split, 0, len(splits))
	for _, sp := range splits {
		bs = append(bs, balance.Split{ExpenseID: sp.ExpenseID, OwedBy: sp.OwedBy, Amount: sp.Amount})
	}
	return be, bs, nil
}

func (s *Service) loadSettlementRecords(ctx context.Context, groupID, excludeID int64) ([]balance.Settlement, error) {
	records, err := s.settlements.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]balance.Settlement, 0, len(records))
	for _, r := range records {
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		out = append(out, balance.Settlement{PaidBy: r.PaidBy, PaidTo: r.PaidTo, Amount: r.Amount})
	}
	return out, nil
}

// resolveNames builds the id-to-username map the balance statements need,
// starting from names carried on the group's records and filling gaps from
// the user store.
func (s *Service) resolveNames(ctx context.Context, groupID int64, pairs []balance.PairBalance) (map[int64]string, error) {
	names := make(map[int64]string)

	expenses, err := s.store.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		if e.PayerUsername != "" {
			names[e.PayerID] = e.PayerUsername
		}
	}
	splits, err := s.store.GetSplitsByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, sp := range splits {
		if sp.OwedByUsername != "" {
			names[sp.OwedBy] = sp.OwedByUsername
		}
	}

	for _, p := range pairs {
		for _, id := range []int64{p.DebtorID, p.CreditorID} {
			if _, ok := names[id]; ok {
				continue
			}
			u, err := s.users.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, fmt.Errorf("%w: user with ID %d", user.ErrUserNotFound, id)
			}
			names[id] = u.Username
		}
	}
	return names, nil
}

// buildInputs zips the parallel participant and value slices into strategy
// inputs. For EQUAL splits the values are ignored.
func buildInputs(splitType string, participants []int64, values []float64) []split.Input {
	inputs := make([]split.Input, 0, len(participants))
	for i, id := range participants {
		in := split.Input{UserID: id}
		if i < len(values) {
			v := values[i]
			switch split.Type(splitType) {
			case split.TypePercentage:
				in.Percentage = &v
			case split.TypeExact:
				in.Amount = &v
			}
		}
		inputs = append(inputs, in)
	}
	return inputs
}
