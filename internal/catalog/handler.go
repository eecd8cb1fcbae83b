package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Ledger is the repo surface the RPC handlers need.
type Ledger interface {
	ProductExists(ctx context.Context, productID int64) (bool, error)
	ReserveBatch(ctx context.Context, lines []LineRequest) ([]LineResult, error)
	Release(ctx context.Context, lines []LineRequest) ([]int64, error)
}

// Handler exposes the ledger RPC surface consumed by the order service.
type Handler struct {
	Repo Ledger
}

func (h *Handler) Register(r *chi.Mux) {
	r.Post("/rpc/validate-product", h.validateProduct)
	r.Post("/rpc/validate-basket", h.validateBasket)
	r.Post("/rpc/release-reservation", h.releaseReservation)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeInternalError logs the detail and answers with a generic body;
// driver and SQL detail never crosses the RPC boundary.
func writeInternalError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (h *Handler) validateProduct(w http.ResponseWriter, r *http.Request) {
	var req validateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	exists, err := h.Repo.ProductExists(ctx, req.ProductID)
	if err != nil {
		writeInternalError(w, "validate product", err)
		return
	}
	writeJSON(w, http.StatusOK, validateProductResponse{Exists: exists})
}

func (h *Handler) validateBasket(w http.ResponseWriter, r *http.Request) {
	var lines []LineRequest
	if err := json.NewDecoder(r.Body).Decode(&lines); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results, err := h.Repo.ReserveBatch(ctx, lines)
	if err != nil {
		writeInternalError(w, "validate basket", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) releaseReservation(w http.ResponseWriter, r *http.Request) {
	var lines []LineRequest
	if err := json.NewDecoder(r.Body).Decode(&lines); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Repo.Release(ctx, lines)
	if err != nil {
		writeInternalError(w, "release reservation", err)
		return
	}
	released := make([]releasedLine, 0, len(ids))
	for _, id := range ids {
		released = append(released, releasedLine{ProductID: id})
	}
	writeJSON(w, http.StatusOK, released)
}
