package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/netaxept-gateway/internal/model"
)

// OperationRepository is the append-only journal of gateway calls.
type OperationRepository struct {
	pool *pgxpool.Pool
}

func NewOperationRepository(pool *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

func (r *OperationRepository) Insert(ctx context.Context, rec *model.OperationRecord) error {
	id := uuid.New()
	rec.ID = id.String()
	return r.pool.QueryRow(ctx,
		`INSERT INTO operation_log (id, transaction_id, operation, amount, currency, order_number, successful, response_code, response_text, response_source)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''))
		RETURNING created_at`,
		id, rec.TransactionID, rec.Operation, rec.Amount, rec.Currency, rec.OrderNumber,
		rec.Successful, rec.ResponseCode, rec.ResponseText, rec.ResponseSource,
	).Scan(&rec.CreatedAt)
}

func (r *OperationRepository) CountByTransaction(ctx context.Context, transactionID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM operation_log WHERE transaction_id = $1`, transactionID).Scan(&n)
	return n, err
}

func (r *OperationRepository) ListByTransaction(ctx context.Context, transactionID string, limit, offset int) ([]model.OperationRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, transaction_id, operation, amount, COALESCE(currency, ''), COALESCE(order_number, ''),
			successful, COALESCE(response_code, ''), COALESCE(response_text, ''), COALESCE(response_source, ''), created_at
		FROM operation_log WHERE transaction_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`, transactionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OperationRecord, error) {
		var rec model.OperationRecord
		err := row.Scan(&rec.ID, &rec.TransactionID, &rec.Operation, &rec.Amount, &rec.Currency, &rec.OrderNumber,
			&rec.Successful, &rec.ResponseCode, &rec.ResponseText, &rec.ResponseSource, &rec.CreatedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan operations: %w", err)
	}
	if records == nil {
		records = []model.OperationRecord{}
	}
	return records, nil
}
