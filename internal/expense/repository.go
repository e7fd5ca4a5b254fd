package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/parthg/splitwise/internal/expense/split"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateExpense(ctx context.Context, groupID, payerID int64, description string, amount float64, splitType string) (*Expense, error) {
	query := `
		INSERT INTO expenses (group_id, payer_id, description, amount, split_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, group_id, payer_id, description, amount, split_type, created_at`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, groupID, payerID, description, amount, splitType).Scan(
		&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.Amount, &e.SplitType, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return e, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, id, payerID int64, description string, amount float64, splitType string) (*Expense, error) {
	query := `
		UPDATE expenses
		SET payer_id = $2, description = $3, amount = $4, split_type = $5
		WHERE id = $1
		RETURNING id, group_id, payer_id, description, amount, split_type, created_at`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id, payerID, description, amount, splitType).Scan(
		&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.Amount, &e.SplitType, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return e, nil
}

func (r *Repository) GetExpenseByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.split_type, e.created_at, u.username
		FROM expenses e
		JOIN users u ON u.id = e.payer_id
		WHERE e.id = $1`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.Amount, &e.SplitType, &e.CreatedAt, &e.PayerUsername,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.split_type, e.created_at, u.username
		FROM expenses e
		JOIN users u ON u.id = e.payer_id
		WHERE e.group_id = $1
		ORDER BY e.id`

	return r.queryExpenses(ctx, query, groupID)
}

func (r *Repository) ListByGroupAndPayer(ctx context.Context, groupID, payerID int64) ([]*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.split_type, e.created_at, u.username
		FROM expenses e
		JOIN users u ON u.id = e.payer_id
		WHERE e.group_id = $1 AND e.payer_id = $2
		ORDER BY e.id`

	return r.queryExpenses(ctx, query, groupID, payerID)
}

func (r *Repository) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.Amount, &e.SplitType, &e.CreatedAt, &e.PayerUsername); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func (r *Repository) DeleteByGroup(ctx context.Context, groupID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM splits WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = $1)`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete splits for group: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM expenses WHERE group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete expenses for group: %w", err)
	}
	return nil
}

func (r *Repository) DeleteByGroupAndPayer(ctx context.Context, groupID, payerID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM splits WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = $1 AND payer_id = $2)`,
		groupID, payerID)
	if err != nil {
		return fmt.Errorf("failed to delete splits for payer: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE group_id = $1 AND payer_id = $2`, groupID, payerID)
	if err != nil {
		return fmt.Errorf("failed to delete expenses for payer: %w", err)
	}
	return nil
}

func (r *Repository) CreateSplits(ctx context.Context, expenseID int64, outputs []split.Output) ([]*Split, error) {
	query := `
		INSERT INTO splits (expense_id, owed_by, amount)
		VALUES ($1, $2, $3)
		RETURNING id, expense_id, owed_by, amount`

	splits := make([]*Split, 0, len(outputs))
	for _, out := range outputs {
		s := &Split{}
		err := r.db.QueryRowContext(ctx, query, expenseID, out.UserID, out.AmountOwed).Scan(
			&s.ID, &s.ExpenseID, &s.OwedBy, &s.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create split: %w", err)
		}
		splits = append(splits, s)
	}
	return splits, nil
}

func (r *Repository) GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.owed_by, s.amount, u.username
		FROM splits s
		JOIN users u ON u.id = s.owed_by
		WHERE s.expense_id = $1
		ORDER BY s.id`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.OwedBy, &s.Amount, &s.OwedByUsername); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

func (r *Repository) GetSplitsByGroupID(ctx context.Context, groupID int64) ([]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.owed_by, s.amount, u.username
		FROM splits s
		JOIN expenses e ON e.id = s.expense_id
		JOIN users u ON u.id = s.owed_by
		WHERE e.group_id = $1
		ORDER BY s.id`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.OwedBy, &s.Amount, &s.OwedByUsername); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

func (r *Repository) DeleteSplitsByExpenseID(ctx context.Context, expenseID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM splits WHERE expense_id = $1`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	return nil
}
