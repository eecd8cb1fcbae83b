package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomarket/orders/internal/basket"
	"github.com/gomarket/orders/internal/catalog"
)

type stubBasketStore struct {
	basket *basket.Basket
	added  *basket.Item
	total  int
}

func (s *stubBasketStore) CreateForUser(ctx context.Context, userID int64) error { return nil }

func (s *stubBasketStore) FindByUserID(ctx context.Context, userID int64) (*basket.Basket, error) {
	if s.basket == nil || s.basket.UserID != userID {
		return nil, basket.ErrNotFound
	}
	return s.basket, nil
}

func (s *stubBasketStore) AddItem(ctx context.Context, basketID int64, item *basket.Item) (*basket.Item, error) {
	item.ID = 10
	item.BasketID = basketID
	s.added = item
	s.basket.Items = append(s.basket.Items, item)
	return item, nil
}

func (s *stubBasketStore) DeleteItem(ctx context.Context, itemID int64) error       { return nil }
func (s *stubBasketStore) UpdateItemCount(ctx context.Context, id int64, c int) error { return nil }
func (s *stubBasketStore) UpdateItemPrice(ctx context.Context, id int64, p int) error { return nil }

func (s *stubBasketStore) UpdateTotalPrice(ctx context.Context, basketID int64, total int) error {
	s.total = total
	return nil
}

type stubProductCheck struct {
	exists bool
	err    error
}

func (c *stubProductCheck) ValidateProduct(ctx context.Context, productID int64) (bool, error) {
	return c.exists, c.err
}

func (c *stubProductCheck) ValidateBasketItems(ctx context.Context, lines []catalog.LineRequest) (catalog.ValidationResult, error) {
	return nil, nil
}

func (c *stubProductCheck) ReleaseReservation(ctx context.Context, lines []catalog.LineRequest) error {
	return nil
}

func newBasketRouter(h *BasketHandler, userID int64) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), userIDKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)
	return r
}

func TestGetBasket(t *testing.T) {
	store := &stubBasketStore{basket: &basket.Basket{
		ID: 1, UserID: 7, TotalPrice: 20,
		Items: []*basket.Item{{ID: 10, BasketID: 1, ProductID: 100, Price: 10, Count: 2}},
	}}
	h := &BasketHandler{Store: store, Catalog: &stubProductCheck{exists: true}}

	rec := httptest.NewRecorder()
	newBasketRouter(h, 7).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/basket", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp BasketResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.TotalPrice)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(100), resp.Items[0].ProductID)
}

func TestAddItemValidatesProductFirst(t *testing.T) {
	store := &stubBasketStore{basket: &basket.Basket{ID: 1, UserID: 7}}
	h := &BasketHandler{Store: store, Catalog: &stubProductCheck{exists: false}}

	req := httptest.NewRequest(http.MethodPost, "/basket/items",
		strings.NewReader(`{"product_id":100,"price":10,"count":2}`))
	rec := httptest.NewRecorder()
	newBasketRouter(h, 7).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, store.added)
}

func TestAddItemCatalogDownIs503(t *testing.T) {
	store := &stubBasketStore{basket: &basket.Basket{ID: 1, UserID: 7}}
	h := &BasketHandler{Store: store, Catalog: &stubProductCheck{err: catalog.ErrUnavailable}}

	req := httptest.NewRequest(http.MethodPost, "/basket/items",
		strings.NewReader(`{"product_id":100,"price":10,"count":2}`))
	rec := httptest.NewRecorder()
	newBasketRouter(h, 7).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAddItemPersistsAndRecomputesTotal(t *testing.T) {
	store := &stubBasketStore{basket: &basket.Basket{ID: 1, UserID: 7}}
	h := &BasketHandler{Store: store, Catalog: &stubProductCheck{exists: true}}

	req := httptest.NewRequest(http.MethodPost, "/basket/items",
		strings.NewReader(`{"product_id":100,"product_name":"mug","price":10,"count":2}`))
	rec := httptest.NewRecorder()
	newBasketRouter(h, 7).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.added)
	assert.Equal(t, int64(100), store.added.ProductID)
	assert.Equal(t, 20, store.total)

	var resp BasketItemResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.ItemID)
	assert.Equal(t, int64(1), resp.BasketID)
}

func TestAddItemRejectsBadCount(t *testing.T) {
	h := &BasketHandler{Store: &stubBasketStore{}, Catalog: &stubProductCheck{exists: true}}

	req := httptest.NewRequest(http.MethodPost, "/basket/items",
		strings.NewReader(`{"product_id":100,"price":10,"count":0}`))
	rec := httptest.NewRecorder()
	newBasketRouter(h, 7).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
