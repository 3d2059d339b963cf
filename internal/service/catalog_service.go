package service

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const FeaturedCount = 8

type ProductBackend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type EventKind string

const (
	ProductCreated EventKind = "created"
	ProductUpdated EventKind = "updated"
	ProductDeleted EventKind = "deleted"
)

// CatalogEvent tells subscribers that the snapshot no longer matches the backend.
type CatalogEvent struct {
	Kind      EventKind
	ProductID string
}

// CatalogService caches the last fetched product list.
type CatalogService struct {
	backend ProductBackend
	auth    AuthView
	log     *zap.Logger
	sfg     singleflight.Group // one in-flight fetch at a time

	mu        sync.RWMutex
	products  []domain.Product
	stale     bool
	fetchedAt time.Time
	subs      map[int]chan CatalogEvent
	nextSub   int
}

// NewCatalogService starts with an empty, stale snapshot.
func NewCatalogService(b ProductBackend, auth AuthView, log *zap.Logger) *CatalogService {
	return &CatalogService{
		backend: b,
		auth:    auth,
		log:     log,
		stale:   true,
		subs:    make(map[int]chan CatalogEvent),
	}
}

// Refresh fetches the product list. On failure the previous snapshot is kept.
func (s *CatalogService) Refresh(ctx context.Context) ([]domain.Product, error) {
	v, err, shared := s.sfg.Do("products", func() (interface{}, error) {
		products, err := s.backend.ListProducts(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.products = products
		s.stale = false
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		return products, nil
	})
	if err != nil {
		s.log.Warn("product fetch failed", zap.Error(err))
		return s.Products(), actionError("fetch products", MsgFetchFailed, err)
	}

	products := v.([]domain.Product)
	s.log.Debug("products fetched", zap.Int("count", len(products)), zap.Bool("shared", shared))
	return cloneProducts(products), nil
}

// Products returns a copy of the snapshot.
func (s *CatalogService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Featured returns the first n products, as shown on the home page.
func (s *CatalogService) Featured(n int) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.products) {
		n = len(s.products)
	}
	return cloneProducts(s.products[:n])
}

// Find looks id up in the snapshot; it never hits the backend.
func (s *CatalogService) Find(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Stale reports whether the snapshot was never fetched or was invalidated since.
func (s *CatalogService) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// FetchedAt is the time of the last successful refresh, zero before one.
func (s *CatalogService) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// Create validates in locally before calling the backend. Admin only.
func (s *CatalogService) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if err := s.requireAdmin(in); err != nil {
		return domain.Product{}, err
	}
	p, err := s.backend.CreateProduct(ctx, in)
	if err != nil {
		return domain.Product{}, actionError("create product", MsgCreateFailed, err)
	}
	s.invalidate(CatalogEvent{Kind: ProductCreated, ProductID: p.ID})
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	if err := s.requireAdmin(in); err != nil {
		return domain.Product{}, err
	}
	p, err := s.backend.UpdateProduct(ctx, id, in)
	if err != nil {
		return domain.Product{}, actionError("update product", MsgUpdateFailed, err)
	}
	s.invalidate(CatalogEvent{Kind: ProductUpdated, ProductID: id})
	return p, nil
}

// Delete removes a product on the backend and marks the snapshot stale.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if s.auth.Status() != domain.AuthenticatedAdmin {
		return domain.ErrAdminRequired
	}
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return actionError("delete product", MsgDeleteFailed, err)
	}
	s.invalidate(CatalogEvent{Kind: ProductDeleted, ProductID: id})
	return nil
}

// Subscribe returns a channel of invalidation events and a function that
// unsubscribes and closes it. Events are dropped for subscribers that fall
// behind; Stale still reports the invalidation.
func (s *CatalogService) Subscribe() (<-chan CatalogEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan CatalogEvent, 16)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *CatalogService) requireAdmin(in domain.ProductInput) error {
	if s.auth.Status() != domain.AuthenticatedAdmin {
		return domain.ErrAdminRequired
	}
	return in.Validate()
}

func (s *CatalogService) invalidate(ev CatalogEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stale = true
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Debug("dropping catalog event for slow subscriber", zap.String("kind", string(ev.Kind)))
		}
	}
}

func cloneProducts(in []domain.Product) []domain.Product {
	if in == nil {
		return nil
	}
	out := make([]domain.Product, len(in))
	copy(out, in)
	return out
}
