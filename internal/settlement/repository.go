package settlement

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, groupID, paidBy, paidTo int64, amount float64) (*Settlement, error) {
	query := `
		INSERT INTO settlements (group_id, paid_by, paid_to, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, group_id, paid_by, paid_to, amount, created_at`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, groupID, paidBy, paidTo, amount).Scan(
		&s.ID, &s.GroupID, &s.PaidBy, &s.PaidTo, &s.Amount, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}
	return s, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.paid_by, s.paid_to, s.amount, s.created_at, payer.username, payee.username
		FROM settlements s
		JOIN users payer ON payer.id = s.paid_by
		JOIN users payee ON payee.id = s.paid_to
		WHERE s.id = $1`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.GroupID, &s.PaidBy, &s.PaidTo, &s.Amount, &s.CreatedAt,
		&s.PaidByUsername, &s.PaidToUsername,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.paid_by, s.paid_to, s.amount, s.created_at, payer.username, payee.username
		FROM settlements s
		JOIN users payer ON payer.id = s.paid_by
		JOIN users payee ON payee.id = s.paid_to
		WHERE s.group_id = $1
		ORDER BY s.id`

	return r.querySettlements(ctx, query, groupID)
}

func (r *Repository) ListPaidBy(ctx context.Context, userID int64) ([]*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.paid_by, s.paid_to, s.amount, s.created_at, payer.username, payee.username
		FROM settlements s
		JOIN users payer ON payer.id = s.paid_by
		JOIN users payee ON payee.id = s.paid_to
		WHERE s.paid_by = $1
		ORDER BY s.id`

	return r.querySettlements(ctx, query, userID)
}

func (r *Repository) ListPaidTo(ctx context.Context, userID int64) ([]*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.paid_by, s.paid_to, s.amount, s.created_at, payer.username, payee.username
		FROM settlements s
		JOIN users payer ON payer.id = s.paid_by
		JOIN users payee ON payee.id = s.paid_to
		WHERE s.paid_to = $1
		ORDER BY s.id`

	return r.querySettlements(ctx, query, userID)
}

func (r *Repository) querySettlements(ctx context.Context, query string, args ...interface{}) ([]*Settlement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(&s.ID, &s.GroupID, &s.PaidBy, &s.PaidTo, &s.Amount, &s.CreatedAt,
			&s.PaidByUsername, &s.PaidToUsername); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

func (r *Repository) UpdateAmount(ctx context.Context, id int64, amount float64) (*Settlement, error) {
	query := `
		UPDATE settlements
		SET amount = $2
		WHERE id = $1
		RETURNING id, group_id, paid_by, paid_to, amount, created_at`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, id, amount).Scan(
		&s.ID, &s.GroupID, &s.PaidBy, &s.PaidTo, &s.Amount, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update settlement: %w", err)
	}
	return s, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settlements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	return nil
}

func (r *Repository) DeleteByGroup(ctx context.Context, groupID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settlements WHERE group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group settlements: %w", err)
	}
	return nil
}

func (r *Repository) DeleteByGroupAndUser(ctx context.Context, groupID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM settlements WHERE group_id = $1 AND (paid_by = $2 OR paid_to = $2)`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user settlements: %w", err)
	}
	return nil
}
