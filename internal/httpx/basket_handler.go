package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gomarket/orders/internal/basket"
	"github.com/gomarket/orders/internal/catalog"
)

type BasketHandler struct {
	Store   basket.Store
	Catalog catalog.Client
}

type AddItemReq struct {
	ProductID          int64  `json:"product_id"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	Price              int    `json:"price"`
	Count              int    `json:"count"`
	SellerName         string `json:"seller_name"`
}

type BasketItemResp struct {
	ItemID    int64 `json:"item_id"`
	BasketID  int64 `json:"basket_id"`
	ProductID int64 `json:"product_id"`
	Price     int   `json:"price"`
	Count     int   `json:"count"`
}

type BasketResp struct {
	ID         int64            `json:"id"`
	UserID     int64            `json:"user_id"`
	TotalPrice int              `json:"total_price"`
	Items      []BasketItemResp `json:"items"`
}

func (h *BasketHandler) Register(r chi.Router) {
	r.Get("/basket", h.getBasket)
	r.Post("/basket/items", h.addItem)
}

func (h *BasketHandler) getBasket(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	b, err := h.Store.FindByUserID(r.Context(), userID)
	if errors.Is(err, basket.ErrNotFound) {
		writeError(w, http.StatusNotFound, "basket not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toBasketResp(b))
}

// addItem puts a product into the caller's basket after checking the
// product still exists. The price is cached from the client's view of the
// catalog; reconciliation corrects it at checkout.
func (h *BasketHandler) addItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID <= 0 || req.Count <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product or count")
		return
	}

	exists, err := h.Catalog.ValidateProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	if !exists {
		writeError(w, http.StatusBadRequest, "product not found")
		return
	}

	b, err := h.Store.FindByUserID(r.Context(), userID)
	if errors.Is(err, basket.ErrNotFound) {
		writeError(w, http.StatusNotFound, "basket not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	item, err := h.Store.AddItem(r.Context(), b.ID, &basket.Item{
		ProductID:          req.ProductID,
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		Price:              req.Price,
		Count:              req.Count,
		SellerName:         req.SellerName,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// reload so the persisted total covers the merged line; the stored
	// total is advisory until checkout reconciliation recomputes it, so a
	// failure here is logged rather than failing the add
	b, err = h.Store.FindByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("basket %d: reload after add: %v", item.BasketID, err)
	} else if err := h.Store.UpdateTotalPrice(r.Context(), b.ID, b.ComputeTotal()); err != nil {
		log.Printf("basket %d: persist total: %v", b.ID, err)
	}

	writeJSON(w, http.StatusOK, BasketItemResp{
		ItemID:    item.ID,
		BasketID:  item.BasketID,
		ProductID: item.ProductID,
		Price:     item.Price,
		Count:     item.Count,
	})
}

func toBasketResp(b *basket.Basket) BasketResp {
	items := make([]BasketItemResp, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, BasketItemResp{
			ItemID:    it.ID,
			BasketID:  it.BasketID,
			ProductID: it.ProductID,
			Price:     it.Price,
			Count:     it.Count,
		})
	}
	return BasketResp{ID: b.ID, UserID: b.UserID, TotalPrice: b.TotalPrice, Items: items}
}
