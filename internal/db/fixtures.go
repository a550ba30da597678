package db

import (
	"fmt"

	"gearxchange/internal/listing"
	"gearxchange/internal/user"
)

type fixtureUser struct {
	username, email, password, fullName, phone string
}

type fixtureListing struct {
	title       string
	price       float64
	priceType   listing.PriceType
	condition   listing.Condition
	location    string
	pictureURL  string
	description string
	make_       string
	model       string
	vehicleType string
	year        int
	fuelOrPower string
	weight      float64
	userID      int
}

var fixtureUsers = []fixtureUser{
	{"john_doe", "john.doe@agritech.com", "password1", "John Doe", "(417) 555-0123"},
	{"sarah_smith", "sarah.smith@greenvalley.org", "password2", "Sarah Smith", "(620) 555-0456"},
	{"mike_chen", "mike.chen@premiumfarms.co", "password3", "Michael Chen", "(316) 555-0789"},
	{"em_jackson", "emily.j@sunnyacres.com", "password4", "Emily Jackson", "(785) 555-0248"},
	{"carlos_m", "carlos.mendoza@vinyard.org", "password5", "Carlos Mendoza", "(913) 555-0999"},
	{"linda_weber", "linda.weber@protonmail.com", "password6", "Linda Weber", "(314) 555-0333"},
}

var fixtureListings = []fixtureListing{
	{
		"John Deere 5075E Tractor", 32500.00, listing.PriceNegotiable, listing.CondUsed, "Springfield, MO",
		"johndeere-5075e.jpg", "2018 model with 450 engine hours. Includes front loader and 3-point hitch. Well-maintained service records.",
		"John Deere", "5075E", "Utility Tractor", 2018, "Diesel", 5075, 1,
	},
	{
		"Bush Hog SQ720 Rotary Cutter", 2200.00, listing.PriceFixed, listing.CondUsed, "Springfield, MO",
		"bush-hog-sq720.jpg", "6ft heavy-duty brush cutter. Good condition - ready for field work.",
		"Bush Hog", "SQ720", "Rotary Cutter", 2017, "PTO Powered", 1200, 1,
	},
	{
		"Krone 4x4 Round Baler", 18500.00, listing.PriceNegotiable, listing.CondUsed, "Springfield, MO",
		"krone-balers.jpg", "2019 model. Twine wrap system. 5000 bales made. Stored under cover.",
		"Krone", "4x4", "Round Baler", 2019, "Hydraulic", 3500, 1,
	},
	{
		"Case IH 2206 Cotton Picker", 149999.00, listing.PriceNegotiable, listing.CondUsed, "Green Valley Farm, KS",
		"case-ih-2206.jpg", "2015 model w/ 2300 engine hours. 4-row narrow picker. Field-ready condition.",
		"Case IH", "2206", "Cotton Picker", 2015, "Diesel", 18000, 2,
	},
	{
		"Kubota L2501 Compact Tractor", 19500.00, listing.PriceFixed, listing.CondNew, "Wichita, KS",
		"kubota-l2501.jpg", "Brand new 25HP tractor with loader. 0 hours. Financing available.",
		"Kubota", "L2501", "Compact Tractor", 2023, "Diesel", 2532, 3,
	},
	{
		"Horsch Joker 4 Cultivator", 8750.00, listing.PriceNegotiable, listing.CondUsed, "Wichita, KS",
		"horsch-joker4.jpg", "12ft working width. Excellent seedbed preparation tool.",
		"Horsch", "Joker 4", "Cultivator", 2020, "Tractor-Powered", 1800, 3,
	},
	{
		"New Holland H7250 Baler", 42200.00, listing.PriceFixed, listing.CondUsed, "Heartland Vineyards, MO",
		"newholland-h7250.jpg", "2020 model square baler. Net wrap system. Only 1500 bales made.",
		"New Holland", "H7250", "Square Baler", 2020, "Hydraulic", 4200, 5,
	},
}

// SeedFixtures inserts the deterministic demo accounts and listings. It is
// idempotent: a store that already holds users is left untouched.
func SeedFixtures(users *user.Repo, listings *listing.Repo) error {
	count, err := users.Count()
	if err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, f := range fixtureUsers {
		if _, err := users.Create(f.username, f.email, f.password, f.fullName, f.phone); err != nil {
			return fmt.Errorf("seed user %s: %w", f.username, err)
		}
	}

	for _, f := range fixtureListings {
		price := f.price
		picture := f.pictureURL
		description := f.description
		weight := f.weight
		l := &listing.Listing{
			Title:       f.title,
			Price:       &price,
			PriceType:   f.priceType,
			Condition:   f.condition,
			Location:    f.location,
			PictureURL:  &picture,
			Description: &description,
			Make:        f.make_,
			Model:       f.model,
			VehicleType: f.vehicleType,
			Year:        f.year,
			FuelOrPower: f.fuelOrPower,
			Weight:      &weight,
			UserID:      f.userID,
		}
		if _, err := listings.Create(l); err != nil {
			return fmt.Errorf("seed listing %s: %w", f.title, err)
		}
	}

	return nil
}
