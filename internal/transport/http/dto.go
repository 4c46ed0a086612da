package http

import (
	"time"

	"github.com/vardarauto/marketplace-api/internal/domain"
)

// Monetary amounts are serialized as fixed 2-decimal strings so clients never
// see binary-float artifacts.

type orderItemResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type orderResponse struct {
	ID                 string              `json:"id"`
	BuyerID            string              `json:"buyer_id"`
	Status             string              `json:"status"`
	TotalAmount        string              `json:"total_amount"`
	Currency           string              `json:"currency"`
	ShippingAddress    string              `json:"shipping_address"`
	ShippingCity       string              `json:"shipping_city,omitempty"`
	ShippingPostalCode string              `json:"shipping_postal_code,omitempty"`
	ShippingCountry    string              `json:"shipping_country,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	Items              []orderItemResponse `json:"items"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ID:        it.ID,
			ListingID: it.ListingID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal.StringFixed(2),
		})
	}
	return orderResponse{
		ID:                 o.ID,
		BuyerID:            o.BuyerID,
		Status:             string(o.Status),
		TotalAmount:        o.TotalAmount.StringFixed(2),
		Currency:           o.Currency,
		ShippingAddress:    o.ShippingAddress,
		ShippingCity:       o.ShippingCity,
		ShippingPostalCode: o.ShippingPostalCode,
		ShippingCountry:    o.ShippingCountry,
		CreatedAt:          o.CreatedAt,
		Items:              items,
	}
}

type listingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	CategoryID  int       `json:"category_id"`
	ListingType string    `json:"listing_type,omitempty"`
	Make        string    `json:"make,omitempty"`
	Model       string    `json:"model,omitempty"`
	Year        int       `json:"year,omitempty"`
	SellerID    string    `json:"seller_id"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toListingResponse(l domain.Listing) listingResponse {
	return listingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price.StringFixed(2),
		Currency:    l.Currency,
		CategoryID:  l.CategoryID,
		ListingType: l.ListingType,
		Make:        l.Make,
		Model:       l.Model,
		Year:        l.Year,
		SellerID:    l.SellerID,
		Active:      l.Active,
		CreatedAt:   l.CreatedAt,
	}
}
