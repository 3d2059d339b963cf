package service

import (
	"context"
	"math"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

type AuthView interface {
	Status() domain.AuthStatus
}

// ShopperView is what the cart needs from auth: the gate and the cart owner.
type ShopperView interface {
	AuthView
	User() (domain.User, bool)
}

type CartPersister interface {
	SaveCart(ctx context.Context, cart domain.Cart)
}

// CartService is the cart engine. It is not safe for concurrent use; the
// controller serializes every call.
type CartService struct {
	cart    domain.Cart
	auth    ShopperView
	persist CartPersister
	log     *zap.Logger
}

// NewCartService starts with an empty cart; use Replace to load a restored one.
func NewCartService(auth ShopperView, persist CartPersister, log *zap.Logger) *CartService {
	return &CartService{
		auth:    auth,
		persist: persist,
		log:     log,
	}
}

// Replace swaps in a restored cart without writing it back.
func (s *CartService) Replace(cart domain.Cart) {
	s.cart = cart.Normalize()
}

// AddItem adds quantity units of product, merging into an existing line. The
// resulting line quantity is capped at domain.MaxQuantity.
func (s *CartService) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	user, ok := s.auth.User()
	if !ok || s.auth.Status() != domain.AuthenticatedUser {
		return domain.ErrUnauthorized
	}
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	quantity = min(quantity, domain.MaxQuantity)

	next := s.cart.Clone()
	next.Owner = user.ID
	if i, ok := next.Find(product.ID); ok {
		next.Lines[i].Quantity = domain.AddQuantity(next.Lines[i].Quantity, quantity)
	} else {
		next.Lines = append(next.Lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  quantity,
		})
	}

	s.commit(ctx, next)
	s.log.Debug("added to cart", zap.String("product_id", product.ID), zap.Int("quantity", quantity))
	return nil
}

// RemoveItem is a no-op when the line is absent.
func (s *CartService) RemoveItem(ctx context.Context, productID string) {
	i, ok := s.cart.Find(productID)
	if !ok {
		return
	}

	next := s.cart.Clone()
	next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
	s.commit(ctx, next)
}

// SetQuantity floors quantity; anything below one removes the line.
func (s *CartService) SetQuantity(ctx context.Context, productID string, quantity float64) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return
	}
	i, ok := s.cart.Find(productID)
	if !ok {
		return
	}

	q := math.Floor(quantity)
	if q < 1 {
		s.RemoveItem(ctx, productID)
		return
	}
	if q > domain.MaxQuantity {
		q = domain.MaxQuantity
	}

	next := s.cart.Clone()
	next.Lines[i].Quantity = int(q)
	s.commit(ctx, next)
}

func (s *CartService) Clear(ctx context.Context) {
	s.commit(ctx, domain.Cart{})
}

// Claim hands the held cart to userID after a sign-in. Lines added by another
// user are dropped; a non-empty cart with no recorded owner is adopted. It
// reports whether lines were dropped.
func (s *CartService) Claim(ctx context.Context, userID string) bool {
	switch {
	case s.cart.Owner == userID:
		return false
	case s.cart.Owner == "":
		if s.cart.IsEmpty() {
			return false
		}
		next := s.cart.Clone()
		next.Owner = userID
		s.commit(ctx, next)
		return false
	default:
		dropped := !s.cart.IsEmpty()
		s.commit(ctx, domain.Cart{})
		return dropped
	}
}

// Owner is the id of the user the held lines belong to.
func (s *CartService) Owner() string {
	return s.cart.Owner
}

// Cart returns a copy; callers may not mutate the engine's lines.
func (s *CartService) Cart() domain.Cart {
	return s.cart.Clone()
}

func (s *CartService) Lines() []domain.CartLine {
	return s.cart.Clone().Lines
}

func (s *CartService) ItemCount() int {
	return s.cart.ItemCount()
}

func (s *CartService) Totals() domain.Totals {
	return domain.ComputeTotals(s.cart.Lines)
}

func (s *CartService) commit(ctx context.Context, next domain.Cart) {
	s.cart = next
	s.persist.SaveCart(ctx, next.Clone())
}
