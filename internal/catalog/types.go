package catalog

import "errors"

// ErrUnavailable covers transport and remote-internal failures of the
// catalog RPC. The caller must treat it as "nothing was reserved"; it is
// never the same thing as a product that does not exist.
var ErrUnavailable = errors.New("catalog unavailable")

type LineRequest struct {
	ProductID int64 `json:"product_id"`
	Count     int   `json:"count"`
}

// LineResult is the ledger's verdict on one basket line. Reservation of a
// satisfiable line has already happened by the time the result is read.
type LineResult struct {
	ProductID       int64 `json:"product_id"`
	Exists          bool  `json:"exists"`
	CurrentPrice    int   `json:"current_price"`
	RequestedCount  int   `json:"requested_count"`
	AvailableCount  int   `json:"available_count"`
	CountSufficient bool  `json:"count_sufficient"`
}

// ValidationResult indexes line results by product id for one
// reserve-and-validate round trip. It is consumed once and discarded.
type ValidationResult map[int64]LineResult

func NewValidationResult(results []LineResult) ValidationResult {
	out := make(ValidationResult, len(results))
	for _, r := range results {
		out[r.ProductID] = r
	}
	return out
}

func (v ValidationResult) ResultFor(productID int64) (LineResult, bool) {
	r, ok := v[productID]
	return r, ok
}

func (v ValidationResult) HasMissing() bool {
	for _, r := range v {
		if !r.Exists {
			return true
		}
	}
	return false
}

func (v ValidationResult) HasInsufficient() bool {
	for _, r := range v {
		if r.Exists && !r.CountSufficient {
			return true
		}
	}
	return false
}

// Reserved returns the lines the ledger actually decremented, i.e. the
// compensation a caller owes if it later fails.
func (v ValidationResult) Reserved() []LineRequest {
	var out []LineRequest
	for _, r := range v {
		if r.Exists && r.CountSufficient {
			out = append(out, LineRequest{ProductID: r.ProductID, Count: r.RequestedCount})
		}
	}
	return out
}
