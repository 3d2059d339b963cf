package app

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// State is everything a view needs to render the current screen.
type State struct {
	SessionID    string            `json:"session_id"`
	Page         domain.Page       `json:"page"`
	Auth         domain.AuthStatus `json:"auth"`
	User         *domain.User      `json:"user,omitempty"`
	Cart         []domain.CartLine `json:"cart"`
	Totals       domain.Totals     `json:"totals"`
	ItemCount    int               `json:"item_count"`
	Products     []domain.Product  `json:"products"`
	Nav          []domain.Page     `json:"nav"`
	CatalogStale bool              `json:"catalog_stale"`
	// CatalogFetchedAt is unset until the first successful fetch.
	CatalogFetchedAt *time.Time `json:"catalog_fetched_at,omitempty"`
}

// Result is the outcome of a dispatched action. Notice is the message to show
// the user; Signal is set when navigation was redirected.
type Result struct {
	State   State           `json:"state"`
	Notice  string          `json:"notice,omitempty"`
	Signal  string          `json:"signal,omitempty"`
	Receipt *domain.Receipt `json:"receipt,omitempty"`
	Product *domain.Product `json:"product,omitempty"`
}
