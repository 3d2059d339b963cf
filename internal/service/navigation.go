package service

import "github.com/fjod/go_cart/storefront/internal/domain"

// Redirect signals returned alongside a rewritten page.
const (
	SignalLoginRequired = "login required"
	SignalAdminNoCart   = "admin cannot use cart"
	SignalAdminRequired = "admin access required"
)

// ResolvePage applies one step of the navigation rules. It has no state of its
// own and must be called on every navigation, since status changes between calls.
func ResolvePage(requested domain.Page, status domain.AuthStatus) (domain.Page, string) {
	switch {
	case status == domain.AuthenticatedAdmin && isStorefrontPage(requested):
		return domain.PageAdmin, ""
	case requested == domain.PageCart && status == domain.Anonymous:
		return domain.PageHome, SignalLoginRequired
	case requested == domain.PageCart && status == domain.AuthenticatedAdmin:
		return domain.PageHome, SignalAdminNoCart
	case requested == domain.PageAdmin && status != domain.AuthenticatedAdmin:
		return domain.PageHome, SignalAdminRequired
	default:
		return requested, ""
	}
}

// Navigate resolves until the page is stable, keeping the first signal. An admin
// sent from the cart to home therefore ends on the admin page.
func Navigate(requested domain.Page, status domain.AuthStatus) (domain.Page, string) {
	page, signal := ResolvePage(requested, status)
	for i := 0; i < 3; i++ {
		next, s := ResolvePage(page, status)
		if signal == "" {
			signal = s
		}
		if next == page {
			break
		}
		page = next
	}
	return page, signal
}

// VisibleNav lists the navigation entries shown for status.
func VisibleNav(status domain.AuthStatus) []domain.Page {
	switch status {
	case domain.AuthenticatedAdmin:
		return []domain.Page{domain.PageAdmin}
	case domain.AuthenticatedUser:
		return []domain.Page{domain.PageHome, domain.PageProducts, domain.PageCart, domain.PageAbout, domain.PageContact}
	default:
		return []domain.Page{domain.PageHome, domain.PageProducts, domain.PageAbout, domain.PageContact}
	}
}

func isStorefrontPage(p domain.Page) bool {
	switch p {
	case domain.PageHome, domain.PageProducts, domain.PageAbout, domain.PageContact:
		return true
	}
	return false
}
