package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Yusufdydx/vv-ng/internal/model"
)

func (r *Repository) GetPaymentMethod(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	var method model.PaymentMethod
	err := r.db.GetContext(ctx, &method, "SELECT * FROM payment_methods WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, err
	}
	return &method, nil
}

func (r *Repository) ListActivePaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.db.SelectContext(ctx, &methods,
		"SELECT * FROM payment_methods WHERE is_active = TRUE ORDER BY name")
	return methods, err
}

func (r *Repository) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.db.SelectContext(ctx, &methods, "SELECT * FROM payment_methods ORDER BY name")
	return methods, err
}

func (r *Repository) CreatePaymentMethod(ctx context.Context, method *model.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (name, method_type, is_active, instructions)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		method.Name,
		method.MethodType,
		method.IsActive,
		method.Instructions,
	).Scan(&method.ID, &method.CreatedAt)
}

func (r *Repository) SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE payment_methods SET is_active = $2 WHERE id = $1", id, active)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentMethodNotFound
	}
	return nil
}
