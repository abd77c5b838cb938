package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-checkout-orders/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrInvalidArgument),
		errors.Is(err, orders.ErrIllegalState),
		errors.Is(err, orders.ErrInvalidOrderData):
		return http.StatusBadRequest
	case errors.Is(err, orders.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
