package listing

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an operation on a listing id with no row.
	ErrNotFound = errors.New("listing not found")

	// ErrInvalidField reports an enum or range constraint violation.
	ErrInvalidField = errors.New("invalid listing field")

	// ErrNotOwner reports a delete attempted by someone other than the
	// listing's owner.
	ErrNotOwner = errors.New("not the listing owner")
)

const columns = `id, title, price, price_type, condition, location, picture_url, description,
	       make, model, vehicle_type, year_of_manufacture, fuel_or_power, weight, views, user_id, created_at`

// Repo handles database operations for machinery listings and their
// favourite, visited and bidding relations.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new listing repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create validates and inserts a listing, returning its id. No ownership
// or authentication check happens here; user_id is taken as given.
func (r *Repo) Create(l *Listing) (int, error) {
	if !l.PriceType.Valid() {
		return 0, fmt.Errorf("price_type %q: %w", l.PriceType, ErrInvalidField)
	}
	if !l.Condition.Valid() {
		return 0, fmt.Errorf("condition %q: %w", l.Condition, ErrInvalidField)
	}
	if l.Year < MinYear || l.Year > MaxYear {
		return 0, fmt.Errorf("year_of_manufacture %d outside [%d, %d]: %w", l.Year, MinYear, MaxYear, ErrInvalidField)
	}

	result, err := r.db.Exec(`
		INSERT INTO machinery_listings (title, price, price_type, condition, location, picture_url, description,
			make, model, vehicle_type, year_of_manufacture, fuel_or_power, weight, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.Title, l.Price, string(l.PriceType), string(l.Condition), l.Location, l.PictureURL, l.Description,
		l.Make, l.Model, l.VehicleType, l.Year, l.FuelOrPower, l.Weight, l.UserID)
	if err != nil {
		return 0, fmt.Errorf("create listing %s: %w", l.Title, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get listing id: %w", err)
	}
	return int(id), nil
}

// Get returns a single listing by id.
func (r *Repo) Get(id int) (*Listing, error) {
	row := r.db.QueryRow("SELECT "+columns+" FROM machinery_listings WHERE id = ?", id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}
	return l, nil
}

// List returns every listing sorted by the requested order.
func (r *Repo) List(order Order) ([]*Listing, error) {
	// The ORDER BY fragment comes from the fixed Order whitelist, never
	// from caller input.
	rows, err := r.db.Query("SELECT " + columns + " FROM machinery_listings ORDER BY " + order.clause())
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

// RegisterView atomically increments a listing's view counter by one.
// A non-existent id fails with ErrNotFound.
func (r *Repo) RegisterView(id int) error {
	result, err := r.db.Exec("UPDATE machinery_listings SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("register view for listing %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("register view for listing %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a listing if ownerID matches its user_id.
func (r *Repo) Delete(id, ownerID int) error {
	result, err := r.db.Exec("DELETE FROM machinery_listings WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	if affected > 0 {
		return nil
	}

	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM machinery_listings WHERE id = ?", id).Scan(&count); err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrNotOwner
}

// AddFavourite stars a listing for a user. Adding an existing favourite is
// a no-op, leaving exactly one row per pair.
func (r *Repo) AddFavourite(userID, listingID int) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO favourite_listings (user_id, listing_id) VALUES (?, ?)
	`, userID, listingID)
	if err != nil {
		return fmt.Errorf("add favourite (%d, %d): %w", userID, listingID, err)
	}
	return nil
}

// RemoveFavourite unstars a listing. Removing a pair that does not exist
// succeeds without effect.
func (r *Repo) RemoveFavourite(userID, listingID int) error {
	_, err := r.db.Exec(`
		DELETE FROM favourite_listings WHERE user_id = ? AND listing_id = ?
	`, userID, listingID)
	if err != nil {
		return fmt.Errorf("remove favourite (%d, %d): %w", userID, listingID, err)
	}
	return nil
}

// IsFavourite reports whether a user has starred a listing.
func (r *Repo) IsFavourite(userID, listingID int) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM favourite_listings WHERE user_id = ? AND listing_id = ?
	`, userID, listingID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check favourite (%d, %d): %w", userID, listingID, err)
	}
	return count > 0, nil
}

// FavouritesByUser returns a user's starred listings, most recently
// starred first.
func (r *Repo) FavouritesByUser(userID int) ([]*Listing, error) {
	rows, err := r.db.Query(`
		SELECT `+prefixed("l")+`
		FROM favourite_listings f
		JOIN machinery_listings l ON l.id = f.listing_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("favourites for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectListings(rows)
}

// RecordVisit marks a listing as seen by a user. Revisiting refreshes the
// timestamp but keeps a single row per pair.
func (r *Repo) RecordVisit(userID, listingID int) error {
	_, err := r.db.Exec(`
		INSERT INTO visited_listings (user_id, listing_id) VALUES (?, ?)
		ON CONFLICT (user_id, listing_id) DO UPDATE SET viewed_at = CURRENT_TIMESTAMP
	`, userID, listingID)
	if err != nil {
		return fmt.Errorf("record visit (%d, %d): %w", userID, listingID, err)
	}
	return nil
}

// VisitedByUser returns the listings a user previously viewed, most
// recent first.
func (r *Repo) VisitedByUser(userID int) ([]*Listing, error) {
	rows, err := r.db.Query(`
		SELECT `+prefixed("l")+`
		FROM visited_listings v
		JOIN machinery_listings l ON l.id = v.listing_id
		WHERE v.user_id = ?
		ORDER BY v.viewed_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("visited for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectListings(rows)
}

// PlaceBid records or updates a user's standing bid on a listing. A second
// bid by the same user replaces the first.
func (r *Repo) PlaceBid(userID, listingID int, amount float64) error {
	_, err := r.db.Exec(`
		INSERT INTO biddings (user_id, listing_id, amount) VALUES (?, ?, ?)
		ON CONFLICT (user_id, listing_id) DO UPDATE SET amount = excluded.amount
	`, userID, listingID, amount)
	if err != nil {
		return fmt.Errorf("place bid (%d, %d): %w", userID, listingID, err)
	}
	return nil
}

// BidsFor returns all standing bids on a listing with bidder usernames,
// highest first.
func (r *Repo) BidsFor(listingID int) ([]*Bid, error) {
	rows, err := r.db.Query(`
		SELECT b.user_id, u.username, b.amount
		FROM biddings b
		JOIN users u ON u.id = b.user_id
		WHERE b.listing_id = ?
		ORDER BY b.amount DESC
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("bids for listing %d: %w", listingID, err)
	}
	defer rows.Close()

	var bids []*Bid
	for rows.Next() {
		b := &Bid{}
		if err := rows.Scan(&b.UserID, &b.Username, &b.Amount); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// Count returns the number of stored listings.
func (r *Repo) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM machinery_listings").Scan(&count); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

// prefixed qualifies the column list with a table alias for joins.
func prefixed(alias string) string {
	return alias + `.id, ` + alias + `.title, ` + alias + `.price, ` + alias + `.price_type, ` + alias + `.condition, ` +
		alias + `.location, ` + alias + `.picture_url, ` + alias + `.description, ` + alias + `.make, ` + alias + `.model, ` +
		alias + `.vehicle_type, ` + alias + `.year_of_manufacture, ` + alias + `.fuel_or_power, ` + alias + `.weight, ` +
		alias + `.views, ` + alias + `.user_id, ` + alias + `.created_at`
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (*Listing, error) {
	l := &Listing{}
	var price, weight sql.NullFloat64
	var picture, description sql.NullString
	var userID sql.NullInt64
	var created sql.NullTime

	if err := s.Scan(
		&l.ID, &l.Title, &price, &l.PriceType, &l.Condition, &l.Location, &picture, &description,
		&l.Make, &l.Model, &l.VehicleType, &l.Year, &l.FuelOrPower, &weight, &l.Views, &userID, &created,
	); err != nil {
		return nil, err
	}

	if price.Valid {
		l.Price = &price.Float64
	}
	if weight.Valid {
		l.Weight = &weight.Float64
	}
	if picture.Valid {
		l.PictureURL = &picture.String
	}
	if description.Valid {
		l.Description = &description.String
	}
	if userID.Valid {
		l.UserID = int(userID.Int64)
	}
	if created.Valid {
		l.CreatedAt = created.Time
	}

	return l, nil
}

func collectListings(rows *sql.Rows) ([]*Listing, error) {
	var listings []*Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
