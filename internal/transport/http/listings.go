package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vardarauto/marketplace-api/internal/app"
	"github.com/vardarauto/marketplace-api/internal/domain"
)

// ListingManager is the minimal interface the listing handlers need.
type ListingManager interface {
	CreateListing(ctx context.Context, in app.CreateListingInput) (domain.Listing, error)
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	ListListings(ctx context.Context, onlyActive bool, categoryID int) ([]domain.Listing, error)
	WithdrawListing(ctx context.Context, id string) error
	DeleteListing(ctx context.Context, id string) error
}

type createListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	CategoryID  int    `json:"category_id"`
	ListingType string `json:"listing_type"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	SellerID    string `json:"seller_id"`
}

func HandleCreateListing(svc ListingManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createListingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPrice, "price must be a decimal string")
			return
		}

		listing, err := svc.CreateListing(r.Context(), app.CreateListingInput{
			Title:       req.Title,
			Description: req.Description,
			Price:       price,
			Currency:    req.Currency,
			CategoryID:  req.CategoryID,
			ListingType: req.ListingType,
			Make:        req.Make,
			Model:       req.Model,
			Year:        req.Year,
			SellerID:    req.SellerID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toListingResponse(listing))
	}
}

func HandleGetListing(svc ListingManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.GetListing(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toListingResponse(listing))
	}
}

func HandleListListings(svc ListingManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		onlyActive := r.URL.Query().Get("only_active") != "false"
		categoryID := 0
		if raw := r.URL.Query().Get("category_id"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "category_id must be a non-negative integer")
				return
			}
			categoryID = parsed
		}

		listings, err := svc.ListListings(r.Context(), onlyActive, categoryID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]listingResponse, 0, len(listings))
		for _, l := range listings {
			out = append(out, toListingResponse(l))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func HandleWithdrawListing(svc ListingManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.WithdrawListing(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleDeleteListing(svc ListingManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteListing(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
