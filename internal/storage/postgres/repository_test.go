package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vardarauto/marketplace-api/internal/app"
	"github.com/vardarauto/marketplace-api/internal/clock"
	"github.com/vardarauto/marketplace-api/internal/domain"
	"github.com/vardarauto/marketplace-api/internal/testutil"
)

func TestListingRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	repo := NewListingRepository(pool)

	t.Run("create and read back", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		want := domain.Listing{
			ID:          uuid.NewString(),
			Title:       "Passat B8 tailgate",
			Description: "Minor scratches",
			Price:       decimal.NewFromFloat(240.50),
			Currency:    "EUR",
			CategoryID:  3,
			ListingType: "part",
			Make:        "Volkswagen",
			Model:       "Passat",
			Year:        2017,
			SellerID:    "seller-1",
			Active:      true,
			CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		}
		if err := repo.CreateListing(ctx, want); err != nil {
			t.Fatalf("create listing: %v", err)
		}

		got, err := repo.GetListing(ctx, want.ID)
		if err != nil {
			t.Fatalf("get listing: %v", err)
		}
		if got.Title != want.Title || got.Make != want.Make || !got.Active {
			t.Fatalf("unexpected listing: %+v", got)
		}
		if !got.Price.Equal(want.Price) {
			t.Fatalf("expected price %s, got %s", want.Price, got.Price)
		}
	})

	t.Run("missing and malformed ids", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		if _, err := repo.GetListing(ctx, uuid.NewString()); !errors.Is(err, domain.ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound, got %v", err)
		}
		if _, err := repo.GetListing(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("list filters by active flag and category", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		activeID := testutil.InsertListing(t, ctx, pool, domain.Listing{Title: "Active", CategoryID: 1, Active: true})
		testutil.InsertListing(t, ctx, pool, domain.Listing{Title: "Withdrawn", CategoryID: 1, Active: false})
		testutil.InsertListing(t, ctx, pool, domain.Listing{Title: "Other category", CategoryID: 2, Active: true})

		listings, err := repo.ListListings(ctx, true, 1)
		if err != nil {
			t.Fatalf("list listings: %v", err)
		}
		if len(listings) != 1 || listings[0].ID != activeID {
			t.Fatalf("expected only the active category-1 listing, got %+v", listings)
		}

		all, err := repo.ListListings(ctx, false, 0)
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 listings, got %d", len(all))
		}
	})

	t.Run("deactivation happens exactly once", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		id := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: true})

		if err := repo.DeactivateListing(ctx, id); err != nil {
			t.Fatalf("first deactivate: %v", err)
		}
		if err := repo.DeactivateListing(ctx, id); !errors.Is(err, domain.ErrListingUnavailable) {
			t.Fatalf("expected ErrListingUnavailable, got %v", err)
		}
		if err := repo.DeactivateListing(ctx, uuid.NewString()); !errors.Is(err, domain.ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound, got %v", err)
		}
	})

	t.Run("delete is blocked by order references", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		id := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: false})
		testutil.InsertOrderWithItem(t, ctx, pool, "buyer-1", id)

		referenced, err := repo.HasOrderReferences(ctx, id)
		if err != nil {
			t.Fatalf("check references: %v", err)
		}
		if !referenced {
			t.Fatalf("expected listing to be referenced")
		}
		if err := repo.DeleteListing(ctx, id); !errors.Is(err, domain.ErrListingInUse) {
			t.Fatalf("expected ErrListingInUse from FK, got %v", err)
		}

		free := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: false})
		if err := repo.DeleteListing(ctx, free); err != nil {
			t.Fatalf("delete unreferenced: %v", err)
		}
		if _, err := repo.GetListing(ctx, free); !errors.Is(err, domain.ErrListingNotFound) {
			t.Fatalf("expected listing gone, got %v", err)
		}
	})
}

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	repo := NewOrderRepository(pool)

	t.Run("insert and read back preserves item order", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		listingA := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: true})
		listingB := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: true})

		orderID := uuid.NewString()
		order := domain.Order{
			ID:              orderID,
			BuyerID:         "buyer-1",
			Status:          domain.OrderStatusPending,
			TotalAmount:     decimal.NewFromFloat(150),
			Currency:        "USD",
			ShippingAddress: "Partizanska 1",
			ShippingCity:    "Skopje",
			CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
			Items: []domain.OrderItem{
				{ID: uuid.NewString(), OrderID: orderID, ListingID: listingB, Quantity: 1, UnitPrice: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(50)},
				{ID: uuid.NewString(), OrderID: orderID, ListingID: listingA, Quantity: 1, UnitPrice: decimal.NewFromInt(100), Subtotal: decimal.NewFromInt(100)},
			},
		}
		err := repo.WithTx(ctx, func(ctx context.Context) error {
			return repo.InsertOrder(ctx, order)
		})
		if err != nil {
			t.Fatalf("insert order: %v", err)
		}

		got, err := repo.GetOrder(ctx, orderID)
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if got.Status != domain.OrderStatusPending || !got.TotalAmount.Equal(order.TotalAmount) {
			t.Fatalf("unexpected order: %+v", got)
		}
		if len(got.Items) != 2 || got.Items[0].ListingID != listingB || got.Items[1].ListingID != listingA {
			t.Fatalf("expected items in insert order, got %+v", got.Items)
		}
	})

	t.Run("buyer history is newest first", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		listing := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: false})
		first := testutil.InsertOrderWithItem(t, ctx, pool, "buyer-1", listing)
		time.Sleep(10 * time.Millisecond)
		second := testutil.InsertOrderWithItem(t, ctx, pool, "buyer-1", listing)
		testutil.InsertOrderWithItem(t, ctx, pool, "buyer-2", listing)

		orders, err := repo.ListOrdersByBuyer(ctx, "buyer-1")
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		if orders[0].ID != second || orders[1].ID != first {
			t.Fatalf("expected newest first, got %s then %s", orders[0].ID, orders[1].ID)
		}
	})

	t.Run("status update", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		listing := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: false})
		orderID := testutil.InsertOrderWithItem(t, ctx, pool, "buyer-1", listing)

		if err := repo.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPaid); err != nil {
			t.Fatalf("update status: %v", err)
		}
		got, err := repo.GetOrder(ctx, orderID)
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if got.Status != domain.OrderStatusPaid {
			t.Fatalf("expected paid, got %s", got.Status)
		}

		if err := repo.UpdateOrderStatus(ctx, uuid.NewString(), domain.OrderStatusPaid); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestCheckout_Integration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	svc := app.NewCheckoutService(NewCheckoutRepository(pool), clock.NewSystem())

	t.Run("each listing sells exactly once under concurrency", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		listingID := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: true})

		input := func(buyer string) app.CheckoutInput {
			return app.CheckoutInput{
				BuyerID:  buyer,
				Shipping: app.ShippingInfo{Address: "Partizanska 1"},
				Items:    []app.LineItem{{ListingID: listingID, Quantity: 1}},
			}
		}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, buyer := range []string{"buyer-1", "buyer-2"} {
			wg.Add(1)
			go func(i int, buyer string) {
				defer wg.Done()
				_, errs[i] = svc.Checkout(ctx, input(buyer))
			}(i, buyer)
		}
		wg.Wait()

		var won, lost int
		for _, err := range errs {
			switch {
			case err == nil:
				won++
			case errors.Is(err, domain.ErrListingUnavailable):
				lost++
			default:
				t.Fatalf("unexpected checkout error: %v", err)
			}
		}
		if won != 1 || lost != 1 {
			t.Fatalf("expected exactly one winner, got %d winners and %d losers", won, lost)
		}

		var orderCount int
		if err := pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&orderCount); err != nil {
			t.Fatalf("count orders: %v", err)
		}
		if orderCount != 1 {
			t.Fatalf("expected 1 persisted order, got %d", orderCount)
		}
	})

	t.Run("failed checkout leaves no trace", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		listingID := testutil.InsertListing(t, ctx, pool, domain.Listing{Active: true})

		_, err := svc.Checkout(ctx, app.CheckoutInput{
			BuyerID:  "buyer-1",
			Shipping: app.ShippingInfo{Address: "Partizanska 1"},
			Items: []app.LineItem{
				{ListingID: listingID, Quantity: 1},
				{ListingID: uuid.NewString(), Quantity: 1},
			},
		})
		if !errors.Is(err, domain.ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound, got %v", err)
		}

		var orderCount int
		if err := pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&orderCount); err != nil {
			t.Fatalf("count orders: %v", err)
		}
		if orderCount != 0 {
			t.Fatalf("expected rollback to leave no orders, got %d", orderCount)
		}

		listing, err := NewListingRepository(pool).GetListing(ctx, listingID)
		if err != nil {
			t.Fatalf("get listing: %v", err)
		}
		if !listing.Active {
			t.Fatalf("expected listing to stay active after rollback")
		}
	})

	t.Run("successful checkout persists order and deactivates listings", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		listingA := testutil.InsertListing(t, ctx, pool, domain.Listing{Price: decimal.NewFromInt(100), Active: true})
		listingB := testutil.InsertListing(t, ctx, pool, domain.Listing{Price: decimal.NewFromInt(50), Active: true})

		order, err := svc.Checkout(ctx, app.CheckoutInput{
			BuyerID:  "buyer-1",
			Shipping: app.ShippingInfo{Address: "Partizanska 1", City: "Skopje"},
			Items: []app.LineItem{
				{ListingID: listingA, Quantity: 1},
				{ListingID: listingB, Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("checkout: %v", err)
		}
		if order.TotalAmount.StringFixed(2) != "150.00" {
			t.Fatalf("expected total 150.00, got %s", order.TotalAmount.StringFixed(2))
		}
		if len(order.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(order.Items))
		}

		repo := NewListingRepository(pool)
		for _, id := range []string{listingA, listingB} {
			l, err := repo.GetListing(ctx, id)
			if err != nil {
				t.Fatalf("get listing: %v", err)
			}
			if l.Active {
				t.Fatalf("expected listing %s deactivated", id)
			}
		}
	})
}
