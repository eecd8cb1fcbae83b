package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/gomarket/orders/internal/basket"
	"github.com/gomarket/orders/internal/catalog"
	"github.com/gomarket/orders/internal/orders"
	"github.com/gomarket/orders/internal/redisx"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, userID int64, address string) (*orders.Order, error)
}

type RatingSetter interface {
	SetRating(ctx context.Context, userID, itemID int64, rating int) (*orders.Item, error)
}

type OrderFinder interface {
	FindByID(ctx context.Context, orderID int64) (*orders.Order, error)
}

type OrdersHandler struct {
	Saga    OrderCreator
	Ratings RatingSetter
	Orders  OrderFinder
	Redis   *redis.Client
}

type CreateOrderReq struct {
	Address string `json:"address"`
}

type SetRatingReq struct {
	OrderItemID int64 `json:"order_item_id"`
	Rating      int   `json:"rating"`
}

type OrderItemResp struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Price     int   `json:"price"`
	Count     int   `json:"count"`
	Rating    *int  `json:"rating,omitempty"`
}

type OrderResp struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Status     string          `json:"status"`
	TotalPrice int             `json:"total_price"`
	Items      []OrderItemResp `json:"items"`
	PaymentID  *string         `json:"payment_id,omitempty"`
	Address    string          `json:"address"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/order/create", h.createOrder)
	r.Get("/order/{id}", h.getOrder)
	r.Get("/order/{id}/status", h.getOrderStatus)
	r.Patch("/order-item/rating", h.setItemRating)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	order, err := h.Saga.CreateOrder(r.Context(), userID, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyBasket):
			writeError(w, http.StatusBadRequest, "basket is empty")
		case errors.Is(err, basket.ErrNotFound):
			writeError(w, http.StatusNotFound, "basket not found")
		case errors.Is(err, catalog.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "basket validation unavailable")
		case errors.Is(err, orders.ErrPaymentFailed):
			writeError(w, http.StatusPaymentRequired, "payment failed")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.cacheStatus(r.Context(), order.UserID, order.ID, order.Status)
	writeJSON(w, http.StatusOK, toOrderResp(order))
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Orders.FindByID(r.Context(), orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if order.UserID != userID {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(order))
}

// getOrderStatus serves the status from cache when it can; the database
// stays the source of truth. The cache key carries the owner's user id,
// so a hit implies the ownership check already passed when the entry was
// written and a non-owner always falls through to the store.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, userID, orderID)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	order, err := h.Orders.FindByID(r.Context(), orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if order.UserID != userID {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}

	h.cacheStatus(r.Context(), order.UserID, order.ID, order.Status)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(order.Status)})
}

func (h *OrdersHandler) setItemRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SetRatingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	item, err := h.Ratings.SetRating(r.Context(), userID, req.OrderItemID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "order item not found")
		case errors.Is(err, orders.ErrAccessDenied):
			writeError(w, http.StatusForbidden, "access denied")
		case errors.Is(err, orders.ErrAlreadyRated), errors.Is(err, orders.ErrInvalidRating):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toItemResp(item))
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, userID, orderID int64, status orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, userID, orderID)
	body, _ := json.Marshal(map[string]string{"status": string(status)})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func toOrderResp(o *orders.Order) OrderResp {
	items := make([]OrderItemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, toItemResp(it))
	}
	return OrderResp{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		Items:      items,
		PaymentID:  o.PaymentID,
		Address:    o.Address,
	}
}

func toItemResp(it *orders.Item) OrderItemResp {
	return OrderItemResp{
		ID:        it.ID,
		ProductID: it.ProductID,
		Price:     it.Price,
		Count:     it.Count,
		Rating:    it.Rating,
	}
}
