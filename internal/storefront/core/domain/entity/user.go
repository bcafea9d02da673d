package entity

// User is an account on the marketplace, buyer or store owner.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
	Store     *Store `json:"store,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Store is a seller storefront owned by a User.
type Store struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// AccountType selects what kind of account a registration creates.
type AccountType string

const (
	AccountBuyer AccountType = "buyer"
	AccountStore AccountType = "store"
)

// Registration is the payload for creating an account. Store fields are only
// meaningful when Type is AccountStore.
type Registration struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Email    string      `json:"email,omitempty"`
	Type     AccountType `json:"userType,omitempty"`

	StoreName   string `json:"storeName,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Description string `json:"description,omitempty"`
}

// AuthSession is what a successful register or login yields.
type AuthSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
