package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vardarauto/marketplace-api/internal/metrics"
)

// Services bundles what the router needs from the application layer.
type Services struct {
	Checkout CheckoutProcessor
	Listings ListingManager
	Orders   OrderReader
	Pricing  PriceTransformer
}

func NewRouter(svcs Services, m *metrics.ServerMetrics, logger *log.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(logger))
	r.Use(CORS(corsOrigins))
	if m != nil {
		r.Use(Metrics(m))
	}

	r.Get("/health", HealthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/checkout", HandleCheckout(svcs.Checkout))

	r.Route("/listings", func(r chi.Router) {
		r.Post("/", HandleCreateListing(svcs.Listings))
		r.Get("/", HandleListListings(svcs.Listings))
		r.Get("/{id}", HandleGetListing(svcs.Listings))
		r.Delete("/{id}", HandleDeleteListing(svcs.Listings))
		r.Post("/{id}/withdraw", HandleWithdrawListing(svcs.Listings))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/{id}", HandleGetOrder(svcs.Orders))
		r.Patch("/{id}/status", HandleUpdateOrderStatus(svcs.Orders))
	})
	r.Get("/users/{userID}/orders", HandleListBuyerOrders(svcs.Orders))

	r.Get("/pricing/transform", HandleTransformPrice(svcs.Pricing))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})

	return r
}
