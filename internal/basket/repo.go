package basket

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

// CreateForUser provisions the user's basket. The transport may redeliver
// the user event, so the unique constraint on user_id absorbs duplicates.
func (r *Repo) CreateForUser(ctx context.Context, userID int64) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO baskets(user_id, total_price)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

func (r *Repo) FindByUserID(ctx context.Context, userID int64) (*Basket, error) {
	b := &Basket{}
	err := r.DB.QueryRow(ctx,
		`SELECT id, user_id, total_price FROM baskets WHERE user_id=$1`, userID).
		Scan(&b.ID, &b.UserID, &b.TotalPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, basket_id, product_id, product_name, product_description, price, count, seller_name
		FROM basket_items WHERE basket_id=$1 ORDER BY id`, b.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(&it.ID, &it.BasketID, &it.ProductID, &it.ProductName,
			&it.ProductDescription, &it.Price, &it.Count, &it.SellerName); err != nil {
			return nil, err
		}
		b.Items = append(b.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// AddItem inserts a line or, when the product is already in the basket,
// adds to its count.
func (r *Repo) AddItem(ctx context.Context, basketID int64, item *Item) (*Item, error) {
	out := &Item{BasketID: basketID}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO basket_items(basket_id, product_id, product_name, product_description, price, count, seller_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (basket_id, product_id)
		DO UPDATE SET count = basket_items.count + EXCLUDED.count, price = EXCLUDED.price
		RETURNING id, product_id, product_name, product_description, price, count, seller_name`,
		basketID, item.ProductID, item.ProductName, item.ProductDescription,
		item.Price, item.Count, item.SellerName).
		Scan(&out.ID, &out.ProductID, &out.ProductName, &out.ProductDescription,
			&out.Price, &out.Count, &out.SellerName)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) DeleteItem(ctx context.Context, itemID int64) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM basket_items WHERE id=$1`, itemID)
	return err
}

func (r *Repo) UpdateItemCount(ctx context.Context, itemID int64, count int) error {
	_, err := r.DB.Exec(ctx, `UPDATE basket_items SET count=$2 WHERE id=$1`, itemID, count)
	return err
}

func (r *Repo) UpdateItemPrice(ctx context.Context, itemID int64, price int) error {
	_, err := r.DB.Exec(ctx, `UPDATE basket_items SET price=$2 WHERE id=$1`, itemID, price)
	return err
}

func (r *Repo) UpdateTotalPrice(ctx context.Context, basketID int64, total int) error {
	_, err := r.DB.Exec(ctx, `UPDATE baskets SET total_price=$2 WHERE id=$1`, basketID, total)
	return err
}
