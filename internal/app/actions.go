package app

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
)

// Action is one user intent handed to Controller.Dispatch.
type Action interface {
	actionName() string
}

type Navigate struct {
	Page domain.Page
}

type Login struct {
	Email    string
	Password string
}

type Register struct {
	service.RegisterInput
}

type Logout struct{}

// AddToCart adds Quantity units (one when zero) of a catalog product.
type AddToCart struct {
	ProductID string
	Quantity  int
}

type RemoveFromCart struct {
	ProductID string
}

type SetQuantity struct {
	ProductID string
	Quantity  float64
}

type Checkout struct{}

type RefreshCatalog struct{}

// SaveProduct creates a product when ID is empty and updates it otherwise.
type SaveProduct struct {
	ID    string
	Input domain.ProductInput
}

type DeleteProduct struct {
	ID string
}

type SubmitContact struct {
	Name    string
	Email   string
	Message string
}

func (Navigate) actionName() string       { return "navigate" }
func (Login) actionName() string          { return "login" }
func (Register) actionName() string       { return "register" }
func (Logout) actionName() string         { return "logout" }
func (AddToCart) actionName() string      { return "add_to_cart" }
func (RemoveFromCart) actionName() string { return "remove_from_cart" }
func (SetQuantity) actionName() string    { return "set_quantity" }
func (Checkout) actionName() string       { return "checkout" }
func (RefreshCatalog) actionName() string { return "refresh_catalog" }
func (SaveProduct) actionName() string    { return "save_product" }
func (DeleteProduct) actionName() string  { return "delete_product" }
func (SubmitContact) actionName() string  { return "submit_contact" }
