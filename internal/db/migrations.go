package db

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create users table",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT,
				full_name TEXT DEFAULT '',
				phone TEXT DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		name: "create machinery listings table",
		sql: `
			CREATE TABLE IF NOT EXISTS machinery_listings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				price REAL, -- NULL means 'price on request'
				price_type TEXT NOT NULL CHECK (price_type IN ('fixed', 'negotiable', 'on request')),
				condition TEXT NOT NULL CHECK (condition IN ('new', 'good as new', 'used', 'heavily used')),
				location TEXT NOT NULL,
				picture_url TEXT,
				description TEXT,
				make TEXT NOT NULL,
				model TEXT NOT NULL,
				vehicle_type TEXT NOT NULL,
				year_of_manufacture INTEGER CHECK (year_of_manufacture >= 1800 AND year_of_manufacture <= 2025),
				fuel_or_power TEXT NOT NULL,
				weight REAL, -- kilograms
				views INTEGER NOT NULL DEFAULT 0,
				user_id INTEGER, -- informational backlink, no cascade
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_listings_user ON machinery_listings(user_id);
		`,
	},
	{
		name: "create favourite listings table",
		sql: `
			CREATE TABLE IF NOT EXISTS favourite_listings (
				user_id INTEGER NOT NULL,
				listing_id INTEGER NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, listing_id)
			)
		`,
	},
	{
		name: "create visited listings table",
		sql: `
			CREATE TABLE IF NOT EXISTS visited_listings (
				user_id INTEGER NOT NULL,
				listing_id INTEGER NOT NULL,
				viewed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, listing_id)
			)
		`,
	},
	{
		name: "create biddings table",
		sql: `
			CREATE TABLE IF NOT EXISTS biddings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				listing_id INTEGER NOT NULL,
				amount REAL NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (user_id, listing_id)
			);
			CREATE INDEX IF NOT EXISTS idx_biddings_listing ON biddings(listing_id);
		`,
	},
}
