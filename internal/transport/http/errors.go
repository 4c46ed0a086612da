package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vardarauto/marketplace-api/internal/domain"
)

const (
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidAmount      = "invalid_amount"
	codeListingNotFound    = "listing_not_found"
	codeListingUnavailable = "listing_unavailable"
	codeListingInUse       = "listing_in_use"
	codeOrderNotFound      = "order_not_found"
	codeInvalidID          = "invalid_id"
	codeInvalidQuantity    = "invalid_quantity"
	codeEmptyOrder         = "empty_order"
	codeBuyerRequired      = "buyer_required"
	codeShippingRequired   = "shipping_required"
	codeCurrencyMismatch   = "currency_mismatch"
	codeInvalidStatus      = "invalid_status"
	codeStatusFinal        = "status_final"
	codeTitleRequired      = "title_required"
	codeInvalidPrice       = "invalid_price"
	codeSellerRequired     = "seller_required"
	codeRequestTimeout     = "request_timeout"
	codeRequestCancelled   = "request_cancelled"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps service errors to HTTP. Business-rule violations are
// deterministic typed outcomes; infrastructure faults surface as 500 and
// cancellation stays distinct from both.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		writeError(w, http.StatusNotFound, codeListingNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrListingUnavailable):
		writeError(w, http.StatusConflict, codeListingUnavailable, err.Error())
	case errors.Is(err, domain.ErrListingInUse):
		writeError(w, http.StatusConflict, codeListingInUse, err.Error())
	case errors.Is(err, domain.ErrCurrencyMismatch):
		writeError(w, http.StatusUnprocessableEntity, codeCurrencyMismatch, err.Error())
	case errors.Is(err, domain.ErrStatusFinal):
		writeError(w, http.StatusConflict, codeStatusFinal, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, codeEmptyOrder, err.Error())
	case errors.Is(err, domain.ErrBuyerRequired):
		writeError(w, http.StatusBadRequest, codeBuyerRequired, err.Error())
	case errors.Is(err, domain.ErrShippingRequired):
		writeError(w, http.StatusBadRequest, codeShippingRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case errors.Is(err, domain.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, codeTitleRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrSellerRequired):
		writeError(w, http.StatusBadRequest, codeSellerRequired, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, codeRequestTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, codeRequestCancelled, "request cancelled")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
