// Package domain holds the server-side records of the marketplace: accounts,
// seller stores, and catalog parts.
package domain

import "time"

// User is a marketplace account. Buyers have no Store; store owners get one
// at registration time.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	IsAdmin      bool
	Store        *Store
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store is a seller storefront owned by exactly one User.
type Store struct {
	ID          string
	Name        string
	Address     string
	Phone       string
	Description string
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Part is a catalog item belonging to a Store.
type Part struct {
	ID            string
	Name          string
	Description   string
	Price         float64
	DiscountPrice float64
	ImageURL      string
	IsAvailable   bool
	Category      string
	Brand         string
	Model         string
	Year          string
	StoreID       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PartFilter narrows the public listing. Zero-value fields match everything.
type PartFilter struct {
	Category string
	Brand    string
	Model    string
	Year     string
	Search   string
}
