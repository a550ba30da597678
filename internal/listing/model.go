package listing

import "time"

// PriceType describes how a listing is priced. A nil Price together with
// PriceOnRequest means the seller quotes on contact.
type PriceType string

const (
	PriceFixed      PriceType = "fixed"
	PriceNegotiable PriceType = "negotiable"
	PriceOnRequest  PriceType = "on request"
)

// Valid reports whether the price type is one of the enumerated values.
func (p PriceType) Valid() bool {
	switch p {
	case PriceFixed, PriceNegotiable, PriceOnRequest:
		return true
	}
	return false
}

// Condition describes equipment wear.
type Condition string

const (
	CondNew         Condition = "new"
	CondGoodAsNew   Condition = "good as new"
	CondUsed        Condition = "used"
	CondHeavilyUsed Condition = "heavily used"
)

// Valid reports whether the condition is one of the enumerated values.
func (c Condition) Valid() bool {
	switch c {
	case CondNew, CondGoodAsNew, CondUsed, CondHeavilyUsed:
		return true
	}
	return false
}

// Year-of-manufacture bounds enforced by both the schema and Create.
const (
	MinYear = 1800
	MaxYear = 2025
)

// Listing represents a machinery listing.
type Listing struct {
	ID          int
	Title       string
	Price       *float64 // nil when price is on request
	PriceType   PriceType
	Condition   Condition
	Location    string
	PictureURL  *string
	Description *string
	Make        string
	Model       string
	VehicleType string
	Year        int
	FuelOrPower string
	Weight      *float64 // kilograms
	Views       int
	UserID      int
	CreatedAt   time.Time
}

// Bid is a single user's standing offer on a listing.
type Bid struct {
	UserID   int
	Username string
	Amount   float64
}

// Order selects the sort criterion for listing retrieval. Unrecognized
// values fall back to most-viewed-first.
type Order string

const (
	OrderPriceAsc  Order = "price_asc"
	OrderPriceDesc Order = "price_desc"
	OrderDateDesc  Order = "date_desc"
	OrderViewsDesc Order = "views_desc"
)

// clause maps an Order onto a fixed ORDER BY fragment. Listings without a
// price ("on request") sort after priced ones in both price orders.
func (o Order) clause() string {
	switch o {
	case OrderPriceAsc:
		return "price IS NULL, price ASC"
	case OrderPriceDesc:
		return "price IS NULL, price DESC"
	case OrderDateDesc:
		return "created_at DESC"
	default:
		return "views DESC"
	}
}
