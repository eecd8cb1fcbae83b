package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

// CreateWithItems persists the order and its line snapshot in one
// transaction and fills in the generated ids.
func (r *Repo) CreateWithItems(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(user_id, status, total_price, address)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at, updated_at`,
		o.UserID, string(o.Status), o.TotalPrice, o.Address).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		it.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items(order_id, product_id, price, count)
			VALUES ($1,$2,$3,$4)
			RETURNING id`,
			o.ID, it.ProductID, it.Price, it.Count).
			Scan(&it.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) MarkPaid(ctx context.Context, orderID int64, paymentID string) error {
	// status and payment reference land in one statement
	_, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, payment_id=$3, updated_at=now() WHERE id=$1`,
		orderID, string(StatusPaid), paymentID)
	return err
}

func (r *Repo) MarkCancelled(ctx context.Context, orderID int64) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`,
		orderID, string(StatusCancelled))
	return err
}

func (r *Repo) FindByID(ctx context.Context, orderID int64) (*Order, error) {
	o := &Order{}
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, status, total_price, payment_id, address, created_at, updated_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.UserID, &status, &o.TotalPrice, &o.PaymentID, &o.Address, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, price, count, rating
		FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Price, &it.Count, &it.Rating); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) FindItem(ctx context.Context, itemID int64) (*Item, int64, error) {
	it := &Item{}
	var ownerID int64
	err := r.DB.QueryRow(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.price, i.count, i.rating, o.user_id
		FROM order_items i JOIN orders o ON o.id = i.order_id
		WHERE i.id=$1`, itemID).
		Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Price, &it.Count, &it.Rating, &ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrItemNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return it, ownerID, nil
}

func (r *Repo) SetItemRating(ctx context.Context, itemID int64, rating int) error {
	_, err := r.DB.Exec(ctx, `UPDATE order_items SET rating=$2 WHERE id=$1`, itemID, rating)
	return err
}
