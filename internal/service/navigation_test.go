package service

import (
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolvePage(t *testing.T) {
	tests := []struct {
		requested  domain.Page
		status     domain.AuthStatus
		wantPage   domain.Page
		wantSignal string
	}{
		{domain.PageCart, domain.Anonymous, domain.PageHome, SignalLoginRequired},
		{domain.PageAdmin, domain.AuthenticatedUser, domain.PageHome, SignalAdminRequired},
		{domain.PageAdmin, domain.Anonymous, domain.PageHome, SignalAdminRequired},
		{domain.PageCart, domain.AuthenticatedAdmin, domain.PageHome, SignalAdminNoCart},
		{domain.PageHome, domain.AuthenticatedAdmin, domain.PageAdmin, ""},
		{domain.PageProducts, domain.AuthenticatedAdmin, domain.PageAdmin, ""},
		{domain.PageAbout, domain.AuthenticatedAdmin, domain.PageAdmin, ""},
		{domain.PageContact, domain.AuthenticatedAdmin, domain.PageAdmin, ""},
		{domain.PageAdmin, domain.AuthenticatedAdmin, domain.PageAdmin, ""},
		{domain.PageCart, domain.AuthenticatedUser, domain.PageCart, ""},
		{domain.PageProducts, domain.Anonymous, domain.PageProducts, ""},
		{domain.PageContact, domain.AuthenticatedUser, domain.PageContact, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.requested)+"/"+tt.status.String(), func(t *testing.T) {
			page, signal := ResolvePage(tt.requested, tt.status)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSignal, signal)
		})
	}
}

func TestNavigateSettles(t *testing.T) {
	page, signal := Navigate(domain.PageCart, domain.AuthenticatedAdmin)
	assert.Equal(t, domain.PageAdmin, page)
	assert.Equal(t, SignalAdminNoCart, signal)

	page, signal = Navigate(domain.PageCart, domain.Anonymous)
	assert.Equal(t, domain.PageHome, page)
	assert.Equal(t, SignalLoginRequired, signal)
}

func TestVisibleNav(t *testing.T) {
	assert.NotContains(t, VisibleNav(domain.Anonymous), domain.PageCart)
	assert.NotContains(t, VisibleNav(domain.Anonymous), domain.PageAdmin)
	assert.Contains(t, VisibleNav(domain.AuthenticatedUser), domain.PageCart)
	assert.NotContains(t, VisibleNav(domain.AuthenticatedUser), domain.PageAdmin)
	assert.Equal(t, []domain.Page{domain.PageAdmin}, VisibleNav(domain.AuthenticatedAdmin))
}
