// Package app holds the session controller: the single owner of auth, cart,
// catalog and navigation state for one client profile.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/export"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	NoticeLoginRequired  = "Please login to view your cart."
	NoticeAdminNoCart    = "Admin users cannot place orders. Please login as a regular user."
	NoticeAdminRequired  = "Admin access required. Please login as admin."
	NoticeLoggedOut      = "You have been logged out."
	NoticeOrderPlaced    = "Order placed successfully! Thank you for your purchase."
	NoticeContactThanks  = "Thank you for your message! We will get back to you soon."
	NoticeProductAdded   = "Product added successfully!"
	NoticeProductUpdated = "Product updated successfully!"
	NoticeProductDeleted = "Product deleted successfully!"
)

var errContactIncomplete = domain.NewValidationError("Please fill in all fields.")

type Deps struct {
	Store store.Store
	API   config.API
	Log   *zap.Logger
}

// Controller serializes every action behind one mutex, so the services it owns
// never see two interleaved mutations.
type Controller struct {
	mu sync.Mutex

	sessions *session.Store
	auth     *service.AuthService
	cart     *service.CartService
	catalog  *service.CatalogService
	log      *zap.Logger

	sessionID   string
	page        domain.Page
	events      <-chan service.CatalogEvent
	unsubscribe func()
	now         func() time.Time
}

// authTokens breaks the construction cycle between the backend client, which
// needs a token source, and the auth service, which needs the client.
type authTokens struct {
	auth *service.AuthService
}

func (t *authTokens) Token() string {
	if t.auth == nil {
		return ""
	}
	return t.auth.Token()
}

// New restores the persisted session and makes a best-effort catalog fetch.
// A backend that is down leaves the catalog empty and stale.
func New(ctx context.Context, deps Deps) *Controller {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	sessions := session.NewStore(deps.Store, log.Named("session"))
	tokens := &authTokens{}
	client := backend.NewClient(deps.API, tokens, log.Named("backend"))

	auth := service.NewAuthService(client, sessions, log.Named("auth"))
	tokens.auth = auth
	catalog := service.NewCatalogService(client, auth, log.Named("catalog"))
	events, unsubscribe := catalog.Subscribe()

	c := &Controller{
		sessions:    sessions,
		auth:        auth,
		cart:        service.NewCartService(auth, sessions, log.Named("cart")),
		catalog:     catalog,
		log:         log,
		events:      events,
		unsubscribe: unsubscribe,
		now:         time.Now,
	}

	sess := sessions.Restore(ctx)
	c.sessionID = sess.ID
	c.auth.Restore(sess)
	c.cart.Replace(sess.Cart)
	c.page, _ = service.Navigate(domain.PageHome, c.auth.Status())

	if _, err := c.catalog.Refresh(ctx); err != nil {
		log.Warn("initial catalog fetch failed", zap.Error(err))
	}

	log.Info("session restored",
		zap.String("session_id", c.sessionID),
		zap.Stringer("status", c.auth.Status()),
		zap.Int("cart_items", c.cart.ItemCount()),
	)
	return c
}

// Close stops listening for catalog events. The store is owned by the caller.
func (c *Controller) Close() {
	c.unsubscribe()
}

// State returns a snapshot without dispatching anything.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Dispatch applies a to the session. The returned Result always carries the
// resulting state, including when err is non-nil.
func (c *Controller) Dispatch(ctx context.Context, a Action) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := logger.WithTrace(ctx, c.log).With(zap.String("action", a.actionName()))

	if _, explicit := a.(RefreshCatalog); !explicit {
		c.refreshIfStale(ctx, log)
	}

	res, err := c.apply(ctx, log, a)
	res.State = c.snapshot()
	if err != nil {
		log.Debug("action rejected", zap.Error(err))
	}
	return res, err
}

func (c *Controller) apply(ctx context.Context, log *zap.Logger, a Action) (Result, error) {
	switch a := a.(type) {
	case Navigate:
		return c.navigate(a.Page), nil

	case Login:
		return c.login(ctx, log, a)

	case Register:
		user, err := c.auth.Register(ctx, a.RegisterInput)
		if err != nil {
			return Result{}, err
		}
		c.claimCart(ctx, log, user)
		c.page = domain.PageHome
		return Result{Notice: fmt.Sprintf("Account created successfully! Welcome, %s!", user.DisplayName())}, nil

	case Logout:
		c.auth.Logout(ctx)
		c.cart.Clear(ctx)
		c.page = domain.PageHome
		log.Info("logged out")
		return Result{Notice: NoticeLoggedOut}, nil

	case AddToCart:
		product, ok := c.catalog.Find(a.ProductID)
		if !ok {
			log.Debug("product not in catalog", zap.String("product_id", a.ProductID))
			return Result{}, nil
		}
		qty := a.Quantity
		if qty == 0 {
			qty = 1
		}
		if err := c.cart.AddItem(ctx, product, qty); err != nil {
			return Result{}, err
		}
		return Result{Notice: product.Name + " added to cart!"}, nil

	case RemoveFromCart:
		c.cart.RemoveItem(ctx, a.ProductID)
		return Result{}, nil

	case SetQuantity:
		c.cart.SetQuantity(ctx, a.ProductID, a.Quantity)
		return Result{}, nil

	case Checkout:
		return c.checkout(ctx, log)

	case RefreshCatalog:
		if _, err := c.catalog.Refresh(ctx); err != nil {
			return Result{}, err
		}
		return Result{}, nil

	case SaveProduct:
		return c.saveProduct(ctx, log, a)

	case DeleteProduct:
		if err := c.catalog.Delete(ctx, a.ID); err != nil {
			return Result{}, err
		}
		c.refreshIfStale(ctx, log)
		return Result{Notice: NoticeProductDeleted}, nil

	case SubmitContact:
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Email) == "" || strings.TrimSpace(a.Message) == "" {
			return Result{}, errContactIncomplete
		}
		log.Info("contact message received", zap.String("email", a.Email), zap.Int("length", len(a.Message)))
		return Result{Notice: NoticeContactThanks}, nil

	default:
		return Result{}, fmt.Errorf("unsupported action %T", a)
	}
}

func (c *Controller) navigate(requested domain.Page) Result {
	page, signal := service.Navigate(requested, c.auth.Status())
	c.page = page
	return Result{Signal: signal, Notice: signalNotice(signal)}
}

// login replaces the current session on success.
func (c *Controller) login(ctx context.Context, log *zap.Logger, a Login) (Result, error) {
	user, err := c.auth.Login(ctx, a.Email, a.Password)
	if err != nil {
		return Result{}, err
	}
	c.claimCart(ctx, log, user)

	c.page = domain.PageHome
	if user.IsAdmin() {
		c.page = domain.PageAdmin
	}

	name := user.Name
	if name == "" {
		name = a.Email
	}
	return Result{Notice: fmt.Sprintf("Welcome, %s!", name)}, nil
}

// claimCart runs after every successful sign-in. A cart held for another user
// is dropped whether or not that user's auth is still around.
func (c *Controller) claimCart(ctx context.Context, log *zap.Logger, user domain.User) {
	owner := c.cart.Owner()
	if c.cart.Claim(ctx, user.ID) {
		log.Info("dropping cart of previous user", zap.String("previous_user", owner))
	}
}

func (c *Controller) checkout(ctx context.Context, log *zap.Logger) (Result, error) {
	if c.auth.Status() != domain.AuthenticatedUser {
		return Result{}, domain.ErrUnauthorized
	}
	cart := c.cart.Cart()
	if cart.IsEmpty() {
		return Result{}, domain.ErrEmptyCart
	}

	receipt := &domain.Receipt{
		OrderRef: "order_" + uuid.NewString(),
		Lines:    cart.Lines,
		Totals:   domain.ComputeTotals(cart.Lines),
		PlacedAt: c.now().UTC(),
	}
	c.cart.Clear(ctx)
	c.page = domain.PageHome

	log.Info("order placed",
		zap.String("order_ref", receipt.OrderRef),
		zap.String("total", domain.FormatMoney(receipt.Totals.Total)),
	)
	return Result{Notice: NoticeOrderPlaced, Receipt: receipt}, nil
}

func (c *Controller) saveProduct(ctx context.Context, log *zap.Logger, a SaveProduct) (Result, error) {
	var (
		product domain.Product
		notice  string
		err     error
	)
	if a.ID == "" {
		product, err = c.catalog.Create(ctx, a.Input)
		notice = NoticeProductAdded
	} else {
		product, err = c.catalog.Update(ctx, a.ID, a.Input)
		notice = NoticeProductUpdated
	}
	if err != nil {
		return Result{}, err
	}

	c.refreshIfStale(ctx, log)
	return Result{Notice: notice, Product: &product}, nil
}

// Products returns the whole cached catalog.
func (c *Controller) Products() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.Products()
}

// ExportCatalog writes the cached product list as a spreadsheet. Admin only.
func (c *Controller) ExportCatalog(ctx context.Context, w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.auth.Status() != domain.AuthenticatedAdmin {
		return domain.ErrAdminRequired
	}
	c.refreshIfStale(ctx, c.log)
	return export.WriteCatalog(w, c.catalog.Products())
}

// refreshIfStale drains pending invalidation events and refetches the catalog
// when it no longer reflects the backend. Failures keep the old snapshot.
func (c *Controller) refreshIfStale(ctx context.Context, log *zap.Logger) {
	for drained := false; !drained; {
		select {
		case ev := <-c.events:
			log.Debug("catalog invalidated", zap.String("kind", string(ev.Kind)), zap.String("product_id", ev.ProductID))
		default:
			drained = true
		}
	}

	if !c.catalog.Stale() {
		return
	}
	if _, err := c.catalog.Refresh(ctx); err != nil {
		log.Warn("catalog refresh failed", zap.Error(err))
	}
}

func (c *Controller) snapshot() State {
	status := c.auth.Status()
	st := State{
		SessionID:    c.sessionID,
		Page:         c.page,
		Auth:         status,
		Cart:         c.cart.Lines(),
		Totals:       c.cart.Totals(),
		ItemCount:    c.cart.ItemCount(),
		Nav:          service.VisibleNav(status),
		CatalogStale: c.catalog.Stale(),
	}
	if u, ok := c.auth.User(); ok {
		st.User = &u
	}
	if at := c.catalog.FetchedAt(); !at.IsZero() {
		st.CatalogFetchedAt = &at
	}

	switch c.page {
	case domain.PageHome:
		st.Products = c.catalog.Featured(service.FeaturedCount)
	case domain.PageProducts, domain.PageAdmin:
		st.Products = c.catalog.Products()
	}
	return st
}

func signalNotice(signal string) string {
	switch signal {
	case service.SignalLoginRequired:
		return NoticeLoginRequired
	case service.SignalAdminNoCart:
		return NoticeAdminNoCart
	case service.SignalAdminRequired:
		return NoticeAdminRequired
	default:
		return ""
	}
}
