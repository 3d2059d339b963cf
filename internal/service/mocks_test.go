package service

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type fixedAuth struct {
	status domain.AuthStatus
	userID string
}

func (a *fixedAuth) Status() domain.AuthStatus { return a.status }

func (a *fixedAuth) User() (domain.User, bool) {
	if a.status == domain.Anonymous {
		return domain.User{}, false
	}
	id := a.userID
	if id == "" {
		id = "u1"
	}
	return domain.User{ID: id}, true
}

type mockPersister struct {
	mu       sync.Mutex
	carts    []domain.Cart
	token    string
	user     *domain.User
	cleared  int
	authSave int
}

func (m *mockPersister) SaveCart(_ context.Context, cart domain.Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts = append(m.carts, cart)
}

func (m *mockPersister) SaveAuth(_ context.Context, token string, user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.user = &user
	m.authSave++
}

func (m *mockPersister) ClearAuth(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	m.cleared++
}

func (m *mockPersister) lastCart() (domain.Cart, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.carts) == 0 {
		return domain.Cart{}, false
	}
	return m.carts[len(m.carts)-1], true
}

type mockAuthBackend struct {
	loginRes    *backend.AuthResponse
	loginErr    error
	registerRes *backend.AuthResponse
	registerErr error

	registered []backend.RegisterRequest
}

func (m *mockAuthBackend) Login(context.Context, string, string) (*backend.AuthResponse, error) {
	return m.loginRes, m.loginErr
}

func (m *mockAuthBackend) Register(_ context.Context, req backend.RegisterRequest) (*backend.AuthResponse, error) {
	m.registered = append(m.registered, req)
	return m.registerRes, m.registerErr
}

type mockProductBackend struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
	calls    int
	gate     chan struct{}

	created []domain.ProductInput
	deleted []string
}

func (m *mockProductBackend) ListProducts(context.Context) ([]domain.Product, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *mockProductBackend) CreateProduct(_ context.Context, in domain.ProductInput) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Product{}, m.err
	}
	m.created = append(m.created, in)
	p := domain.Product{ID: "new", Name: in.Name, Price: in.Price}
	m.products = append(m.products, p)
	return p, nil
}

func (m *mockProductBackend) UpdateProduct(_ context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Product{}, m.err
	}
	return domain.Product{ID: id, Name: in.Name, Price: in.Price}, nil
}

func (m *mockProductBackend) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}
