package basket

import (
	"context"
	"fmt"

	"github.com/gomarket/orders/internal/catalog"
)

// Reconciler brings a basket's cached prices and counts in line with the
// catalog immediately before checkout. Reconciliation is not reversible:
// the catalog reserves satisfiable lines during the validation call and
// the basket is rewritten in place, even if checkout later fails.
type Reconciler struct {
	Store   Store
	Catalog catalog.Client
}

// Reconcile runs one reserve-and-validate round trip and rewrites the
// basket from its results: vanished lines are removed first, surviving
// over-requested lines are clamped down to availability, then stale
// prices are overwritten. A line clamped to zero is pruned. The basket
// total is recomputed over surviving lines and persisted.
//
// A transport or remote error means nothing was reserved; the basket is
// left untouched and the error surfaces as catalog.ErrUnavailable. A store
// write failing after the validation call returns the validation result
// alongside the error: the reservation already happened and the caller
// owes its release.
func (r *Reconciler) Reconcile(ctx context.Context, b *Basket) (catalog.ValidationResult, error) {
	if len(b.Items) == 0 {
		return nil, nil
	}

	lines := make([]catalog.LineRequest, 0, len(b.Items))
	for _, it := range b.Items {
		lines = append(lines, catalog.LineRequest{ProductID: it.ProductID, Count: it.Count})
	}

	res, err := r.Catalog.ValidateBasketItems(ctx, lines)
	if err != nil {
		return nil, fmt.Errorf("validate basket: %w", err)
	}

	survivors := make([]*Item, 0, len(b.Items))
	for _, it := range b.Items {
		lr, ok := res.ResultFor(it.ProductID)
		if !ok || !lr.Exists {
			if err := r.Store.DeleteItem(ctx, it.ID); err != nil {
				return res, err
			}
			continue
		}

		if it.Count > lr.AvailableCount {
			it.Count = lr.AvailableCount
			if it.Count == 0 {
				if err := r.Store.DeleteItem(ctx, it.ID); err != nil {
					return res, err
				}
				continue
			}
			if err := r.Store.UpdateItemCount(ctx, it.ID, it.Count); err != nil {
				return res, err
			}
		}

		if it.Price != lr.CurrentPrice {
			it.Price = lr.CurrentPrice
			if err := r.Store.UpdateItemPrice(ctx, it.ID, it.Price); err != nil {
				return res, err
			}
		}

		survivors = append(survivors, it)
	}

	b.Items = survivors
	b.TotalPrice = b.ComputeTotal()
	if err := r.Store.UpdateTotalPrice(ctx, b.ID, b.TotalPrice); err != nil {
		return res, err
	}
	return res, nil
}
