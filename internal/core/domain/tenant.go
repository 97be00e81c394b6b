package domain

import "time"

// Tenant is a shop whose catalog is reconciled against the feed.
// The shop domain (e.g. "example.myshopify.com") is the identity.
type Tenant struct {
	// Shop is the shop domain.
	Shop string `json:"shop"`

	// AccessToken authenticates catalog API calls for this shop.
	AccessToken string `json:"-"`

	// CreatedAt is when the tenant was stored.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the tenant was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks that the tenant can be used for API calls.
func (t Tenant) Validate() error {
	if t.Shop == "" || t.AccessToken == "" {
		return ErrInvalidInput
	}
	return nil
}

// MaskedToken returns the access token with all but the last four
// characters hidden, for display.
func (t Tenant) MaskedToken() string {
	if len(t.AccessToken) <= 4 {
		return "****"
	}
	return "****" + t.AccessToken[len(t.AccessToken)-4:]
}
