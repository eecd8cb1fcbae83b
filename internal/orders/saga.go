package orders

import (
	"context"
	"log"
	"sync"

	"github.com/gomarket/orders/internal/basket"
	"github.com/gomarket/orders/internal/catalog"
	"github.com/gomarket/orders/internal/payment"
)

// Saga turns a basket into a confirmed order. It is the only place that
// creates orders. There is no distributed transaction across the catalog
// and payment services; instead each step either aborts before local
// state exists or is followed by a recorded compensation.
type Saga struct {
	Baskets    basket.Store
	Orders     Store
	Reconciler *basket.Reconciler
	Payments   payment.Client
	Catalog    catalog.Client

	locks sync.Map // userID -> *sync.Mutex
}

// attempt is the saga's state object: which order the attempt produced,
// what the catalog reserved on its behalf, and whether that reservation
// has been released. Compensation reads this record instead of unwinding
// call frames.
type attempt struct {
	order    *Order
	reserved []catalog.LineRequest
	released bool
}

// CreateOrder executes the fulfillment sequence:
//
//	load basket -> reconcile (reserves inventory) -> snapshot to a
//	PENDING order -> initiate payment -> PAID, or compensate to
//	CANCELLED and release the reservation.
//
// Once the call returns, the order (if one was persisted) is PAID or
// CANCELLED; PENDING is never an outcome. Attempts for the same user are
// serialized because the basket is rewritten in place.
func (s *Saga) CreateOrder(ctx context.Context, userID int64, address string) (*Order, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	b, err := s.Baskets.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(b.Items) == 0 {
		return nil, ErrEmptyBasket
	}

	a := &attempt{}
	res, err := s.Reconciler.Reconcile(ctx, b)
	if res != nil {
		a.reserved = res.Reserved()
	}
	if err != nil {
		// a nil result means the validation call itself failed and
		// nothing was reserved; a non-nil result with an error means a
		// local write failed after the catalog already reserved, so the
		// reservation has to be credited back
		s.release(ctx, a)
		return nil, err
	}

	if len(b.Items) == 0 {
		// Reconciliation emptied the basket. Every removed line either
		// vanished from the catalog or was clamped to zero, neither of
		// which reserves anything, so rejecting here leaves no debt.
		return nil, ErrEmptyBasket
	}

	o := &Order{
		UserID:     userID,
		TotalPrice: b.TotalPrice,
		Address:    address,
	}
	if err := Transition(o, StatusPending); err != nil {
		return nil, err
	}
	o.Items = snapshotItems(b)
	a.order = o

	if err := s.Orders.CreateWithItems(ctx, o); err != nil {
		s.release(ctx, a)
		return nil, err
	}

	paymentID, err := s.Payments.CreatePayment(ctx, o.ID, o.UserID, o.TotalPrice)
	if err != nil {
		log.Printf("order %d: payment failed: %v", o.ID, err)
		s.cancel(ctx, a)
		return nil, ErrPaymentFailed
	}

	if err := Transition(o, StatusPaid); err != nil {
		s.cancel(ctx, a)
		return nil, err
	}
	o.PaymentID = &paymentID
	if err := s.Orders.MarkPaid(ctx, o.ID, paymentID); err != nil {
		log.Printf("order %d: persist paid: %v", o.ID, err)
		o.Status = StatusPending
		o.PaymentID = nil
		s.cancel(ctx, a)
		return nil, ErrPaymentFailed
	}

	return o, nil
}

// cancel moves the persisted order to CANCELLED and releases the catalog
// reservation. The order is retained as an audit record, never deleted.
// Runs detached from the caller's context so a client disconnect cannot
// leave the order PENDING.
func (s *Saga) cancel(ctx context.Context, a *attempt) {
	ctx = context.WithoutCancel(ctx)
	if err := Transition(a.order, StatusCancelled); err != nil {
		log.Printf("order %d: %v", a.order.ID, err)
		return
	}
	if err := s.Orders.MarkCancelled(ctx, a.order.ID); err != nil {
		log.Printf("order %d: persist cancelled: %v", a.order.ID, err)
	}
	s.release(ctx, a)
}

// release credits the reserved counts back, at most once per attempt.
func (s *Saga) release(ctx context.Context, a *attempt) {
	if a.released || len(a.reserved) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.Catalog.ReleaseReservation(ctx, a.reserved); err != nil {
		log.Printf("release reservation: %v", err)
		return
	}
	a.released = true
}

func snapshotItems(b *basket.Basket) []*Item {
	items := make([]*Item, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, &Item{
			ProductID: it.ProductID,
			Price:     it.Price,
			Count:     it.Count,
		})
	}
	return items
}

func (s *Saga) userLock(userID int64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
