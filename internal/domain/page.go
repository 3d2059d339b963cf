package domain

import "fmt"

type Page string

const (
	PageHome     Page = "home"
	PageProducts Page = "products"
	PageCart     Page = "cart"
	PageAdmin    Page = "admin"
	PageAbout    Page = "about"
	PageContact  Page = "contact"
)

var pages = []Page{PageHome, PageProducts, PageCart, PageAdmin, PageAbout, PageContact}

// ParsePage accepts the page names used in navigation links.
func ParsePage(s string) (Page, error) {
	for _, p := range pages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}
