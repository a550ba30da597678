package listing_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"gearxchange/internal/config"
	"gearxchange/internal/db"
	"gearxchange/internal/listing"
	"gearxchange/internal/user"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func ptr[T any](v T) *T { return &v }

func tractor(price *float64) *listing.Listing {
	return &listing.Listing{
		Title:       "John Deere 5075E Tractor",
		Price:       price,
		PriceType:   listing.PriceNegotiable,
		Condition:   listing.CondUsed,
		Location:    "Springfield, MO",
		Make:        "John Deere",
		Model:       "5075E",
		VehicleType: "Utility Tractor",
		Year:        2018,
		FuelOrPower: "Diesel",
		Weight:      ptr(5075.0),
		UserID:      1,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := listing.NewRepo(openTestDB(t).DB)

	id, err := repo.Create(tractor(ptr(32500.0)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "John Deere 5075E Tractor" || *got.Price != 32500.0 || got.Views != 0 {
		t.Fatalf("unexpected listing: %+v", got)
	}
	if got.UserID != 1 {
		t.Fatalf("expected user backlink 1, got %d", got.UserID)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestCreateValidation(t *testing.T) {
	repo := listing.NewRepo(openTestDB(t).DB)

	l := tractor(nil)
	l.PriceType = "auction"
	if _, err := repo.Create(l); !errors.Is(err, listing.ErrInvalidField) {
		t.Fatalf("bad price_type: expected ErrInvalidField, got %v", err)
	}

	l = tractor(nil)
	l.Condition = "broken"
	if _, err := repo.Create(l); !errors.Is(err, listing.ErrInvalidField) {
		t.Fatalf("bad condition: expected ErrInvalidField, got %v", err)
	}

	l = tractor(nil)
	l.Year = 1799
	if _, err := repo.Create(l); !errors.Is(err, listing.ErrInvalidField) {
		t.Fatalf("year below range: expected ErrInvalidField, got %v", err)
	}

	l = tractor(nil)
	l.Year = 2026
	if _, err := repo.Create(l); !errors.Is(err, listing.ErrInvalidField) {
		t.Fatalf("year above range: expected ErrInvalidField, got %v", err)
	}
}

func TestRegisterView(t *testing.T) {
	repo := listing.NewRepo(openTestDB(t).DB)
	id, err := repo.Create(tractor(ptr(32500.0)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := repo.RegisterView(id); err != nil {
			t.Fatalf("register view %d: %v", i, err)
		}
	}

	got, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != 5 {
		t.Fatalf("expected 5 views, got %d", got.Views)
	}

	if err := repo.RegisterView(9999); !errors.Is(err, listing.ErrNotFound) {
		t.Fatalf("missing listing: expected ErrNotFound, got %v", err)
	}
}

func TestRegisterViewConcurrent(t *testing.T) {
	repo := listing.NewRepo(openTestDB(t).DB)
	id, err := repo.Create(tractor(ptr(32500.0)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers, perWorker = 4, 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := repo.RegisterView(id); err != nil {
					t.Errorf("register view: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := repo.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != workers*perWorker {
		t.Fatalf("lost updates: expected %d views, got %d", workers*perWorker, got.Views)
	}
}

func TestListOrdering(t *testing.T) {
	repo := listing.NewRepo(openTestDB(t).DB)

	cheap := tractor(ptr(2200.0))
	cheap.Title = "Bush Hog SQ720 Rotary Cutter"
	dear := tractor(ptr(149999.0))
	dear.Title = "Case IH 2206 Cotton Picker"
	onRequest := tractor(nil)
	onRequest.Title = "Krone 4x4 Round Baler"
	onRequest.PriceType = listing.PriceOnRequest

	cheapID, err := repo.Create(cheap)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(dear); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(onRequest); err != nil {
		t.Fatalf("create: %v", err)
	}

	asc, err := repo.List(listing.OrderPriceAsc)
	if err != nil {
		t.Fatalf("list price_asc: %v", err)
	}
	if len(asc) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(asc))
	}
	if asc[0].Title != "Bush Hog SQ720 Rotary Cutter" || asc[1].Title != "Case IH 2206 Cotton Picker" {
		t.Fatalf("unexpected price_asc order: %s, %s", asc[0].Title, asc[1].Title)
	}
	if asc[2].Price != nil {
		t.Fatalf("expected price-on-request listing last, got %+v", asc[2])
	}

	desc, err := repo.List(listing.OrderPriceDesc)
	if err != nil {
		t.Fatalf("list price_desc: %v", err)
	}
	if desc[0].Title != "Case IH 2206 Cotton Picker" || desc[2].Price != nil {
		t.Fatalf("unexpected price_desc order: %s last=%+v", desc[0].Title, desc[2])
	}

	// An unrecognized ordering falls back to views descending.
	for i := 0; i < 3; i++ {
		if err := repo.RegisterView(cheapID); err != nil {
			t.Fatalf("register view: %v", err)
		}
	}
	fallback, err := repo.List(listing.Order("bogus"))
	if err != nil {
		t.Fatalf("list bogus: %v", err)
	}
	if fallback[0].ID != cheapID {
		t.Fatalf("expected most-viewed listing first, got %s", fallback[0].Title)
	}
}

func TestFavouritesIdempotent(t *testing.T) {
	repo := listing.NewRepo(openTestDB(t).DB)
	id, err := repo.Create(tractor(ptr(32500.0)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.AddFavourite(1, id); err != nil {
		t.Fatalf("add favourite: %v", err)
	}
	if err := repo.AddFavourite(1, id); err != nil {
		t.Fatalf("second add favourite: %v", err)
	}

	favs, err := repo.FavouritesByUser(1)
	if err != nil {
		t.Fatalf("favourites: %v", err)
	}
	if len(favs) != 1 {
		t.Fatalf("expected exactly one favourite row, got %d", len(favs))
	}

	if err := repo.RemoveFavourite(1, id); err != nil {
		t.Fatalf("remove favourite: %v", err)
	}
	// Removing a pair that no longer exists is a no-op success.
	if err := repo.RemoveFavourite(1, id); err != nil {
		t.Fatalf("remove missing favourite: %v", err)
	}

	favs, err = repo.FavouritesByUser(1)
	if err != nil {
		t.Fatalf("favourites after remove: %v", err)
	}
	if len(favs) != 0 {
		t.Fatalf("expected no favourites, got %d", len(favs))
	}
}

func TestVisitedSingleRowPerPair(t *testing.T) {
	repo := listing.NewRepo(openTestDB(t).DB)
	id, err := repo.Create(tractor(ptr(32500.0)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.RecordVisit(1, id); err != nil {
		t.Fatalf("record visit: %v", err)
	}
	if err := repo.RecordVisit(1, id); err != nil {
		t.Fatalf("repeat visit: %v", err)
	}

	visited, err := repo.VisitedByUser(1)
	if err != nil {
		t.Fatalf("visited: %v", err)
	}
	if len(visited) != 1 {
		t.Fatalf("expected one visited row, got %d", len(visited))
	}
	if visited[0].ID != id {
		t.Fatalf("unexpected visited listing: %+v", visited[0])
	}
}

func TestBidUpsert(t *testing.T) {
	database := openTestDB(t)
	users := user.NewRepo(database.DB, user.LegacyHasher{})
	repo := listing.NewRepo(database.DB)

	u, err := users.Create("john_doe", "john.doe@agritech.com", "password1", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	id, err := repo.Create(tractor(ptr(32500.0)))
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	if err := repo.PlaceBid(u.ID, id, 30000); err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if err := repo.PlaceBid(u.ID, id, 31000); err != nil {
		t.Fatalf("update bid: %v", err)
	}

	bids, err := repo.BidsFor(id)
	if err != nil {
		t.Fatalf("bids: %v", err)
	}
	if len(bids) != 1 {
		t.Fatalf("expected one bid row per user, got %d", len(bids))
	}
	if bids[0].Amount != 31000 || bids[0].Username != "john_doe" {
		t.Fatalf("unexpected bid: %+v", bids[0])
	}
}

func TestDeleteOwnership(t *testing.T) {
	repo := listing.NewRepo(openTestDB(t).DB)
	id, err := repo.Create(tractor(ptr(32500.0)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(id, 2); !errors.Is(err, listing.ErrNotOwner) {
		t.Fatalf("non-owner delete: expected ErrNotOwner, got %v", err)
	}
	if err := repo.Delete(9999, 1); !errors.Is(err, listing.ErrNotFound) {
		t.Fatalf("missing delete: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(id, 1); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := repo.Get(id); !errors.Is(err, listing.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
