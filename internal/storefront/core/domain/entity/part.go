package entity

// Part is a catalog item as served by the marketplace API.
type Part struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	// DiscountPrice, when set below Price, is the price actually charged.
	DiscountPrice float64 `json:"discountPrice,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	IsAvailable   bool    `json:"isAvailable"`
	Category      string  `json:"category,omitempty"`
	Brand         string  `json:"brand,omitempty"`
	Model         string  `json:"model,omitempty"`
	Year          string  `json:"year,omitempty"`
	Store         *Store  `json:"store,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

// EffectivePrice is the unit price a buyer pays: the discount price when one
// is set and actually lower than the list price, the list price otherwise.
func (p Part) EffectivePrice() float64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

// PartFilter narrows a public catalog listing. Zero-value fields are omitted
// from the query.
type PartFilter struct {
	Category string
	Brand    string
	Model    string
	Year     string
	Search   string // free text over name and description
}

// PartInput is the payload for creating a part.
type PartInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discountPrice,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	IsAvailable   *bool   `json:"isAvailable,omitempty"`
	Category      string  `json:"category,omitempty"`
	Brand         string  `json:"brand,omitempty"`
	Model         string  `json:"model,omitempty"`
	Year          string  `json:"year,omitempty"`
}

// PartUpdate is a partial update: nil fields are left untouched by the server.
type PartUpdate struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
	IsAvailable   *bool    `json:"isAvailable,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Brand         *string  `json:"brand,omitempty"`
	Model         *string  `json:"model,omitempty"`
	Year          *string  `json:"year,omitempty"`
}
