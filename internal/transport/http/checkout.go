package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vardarauto/marketplace-api/internal/app"
	"github.com/vardarauto/marketplace-api/internal/domain"
)

// CheckoutProcessor is the minimal interface needed to run a checkout.
type CheckoutProcessor interface {
	Checkout(ctx context.Context, in app.CheckoutInput) (domain.Order, error)
}

type checkoutItemRequest struct {
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

type checkoutShippingRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type checkoutRequest struct {
	BuyerID  string                  `json:"buyer_id"`
	Shipping checkoutShippingRequest `json:"shipping"`
	Items    []checkoutItemRequest   `json:"items"`
}

// HandleCheckout returns the HTTP handler for the checkout entry point.
func HandleCheckout(svc CheckoutProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		items := make([]app.LineItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, app.LineItem{
				ListingID: it.ListingID,
				Quantity:  it.Quantity,
			})
		}

		order, err := svc.Checkout(r.Context(), app.CheckoutInput{
			BuyerID: req.BuyerID,
			Shipping: app.ShippingInfo{
				Address:    req.Shipping.Address,
				City:       req.Shipping.City,
				PostalCode: req.Shipping.PostalCode,
				Country:    req.Shipping.Country,
			},
			Items: items,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toOrderResponse(order))
	}
}
