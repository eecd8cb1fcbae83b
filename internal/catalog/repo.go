package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the ledger side: it owns the authoritative product price and
// available count.
type Repo struct{ DB *pgxpool.Pool }

var _ Ledger = (*Repo)(nil)

func (r *Repo) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var one int
	err := r.DB.QueryRow(ctx, `SELECT 1 FROM products WHERE id=$1`, productID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReserveBatch checks and reserves a batch of lines in one transaction.
// Each line locks its product row, decrements the count when the requested
// amount fits, and reports insufficiency without reserving otherwise.
// Satisfiable lines are reserved even when other lines in the batch fail;
// the transaction commits regardless of per-line outcomes.
func (r *Repo) ReserveBatch(ctx context.Context, lines []LineRequest) ([]LineResult, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	results := make([]LineResult, 0, len(lines))
	for _, line := range lines {
		var price, available int
		err := tx.QueryRow(ctx,
			`SELECT price, count FROM products WHERE id=$1 FOR UPDATE`, line.ProductID).
			Scan(&price, &available)
		if errors.Is(err, pgx.ErrNoRows) {
			results = append(results, LineResult{
				ProductID:      line.ProductID,
				RequestedCount: line.Count,
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		sufficient := line.Count <= available
		if sufficient {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET count = count - $2, updated_at = now() WHERE id=$1`,
				line.ProductID, line.Count); err != nil {
				return nil, err
			}
		}
		results = append(results, LineResult{
			ProductID:       line.ProductID,
			Exists:          true,
			CurrentPrice:    price,
			RequestedCount:  line.Count,
			AvailableCount:  available,
			CountSufficient: sufficient,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// Release credits reserved counts back to availability. Idempotency under
// retry is the caller's duty: the saga releases at most once per attempt.
func (r *Repo) Release(ctx context.Context, lines []LineRequest) ([]int64, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	released := make([]int64, 0, len(lines))
	for _, line := range lines {
		ct, err := tx.Exec(ctx,
			`UPDATE products SET count = count + $2, updated_at = now() WHERE id=$1`,
			line.ProductID, line.Count)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() == 1 {
			released = append(released, line.ProductID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return released, nil
}

// ApplyRating folds one order-line rating into the product's aggregate.
func (r *Repo) ApplyRating(ctx context.Context, productID int64, rating int) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE products
		SET rating_sum = rating_sum + $2,
		    rating_count = rating_count + 1,
		    updated_at = now()
		WHERE id=$1`, productID, rating)
	return err
}
