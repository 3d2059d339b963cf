// Package backendtest provides an in-memory stand-in for the remote product
// and auth API, for tests of code built on backend.Client.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type account struct {
	password string
	token    string
	user     domain.User
}

// Server is a fake backend. Product mutations require an admin bearer token.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account
	products []domain.Product
	nextID   int
	failList bool
	requests []string
}

// NewServer starts the fake backend and closes it when t finishes.
func NewServer(t testing.TB) *Server {
	s := &Server{accounts: make(map[string]*account)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("GET /api/products", s.listProducts)
	mux.HandleFunc("POST /api/products", s.saveProduct)
	mux.HandleFunc("PUT /api/products/{id}", s.saveProduct)
	mux.HandleFunc("DELETE /api/products/{id}", s.deleteProduct)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// API returns client settings pointing at the fake.
func (s *Server) API() config.API {
	return config.API{
		BaseURL:         s.URL + "/api",
		Timeout:         5 * time.Second,
		BreakerFailures: 100,
		BreakerCooldown: time.Second,
	}
}

// AddUser registers an account; its token is "token-" + user.ID.
func (s *Server) AddUser(email, password string, user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{password: password, token: "token-" + user.ID, user: user}
}

func (s *Server) AddProducts(products ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, products...)
}

// Products returns a copy of the backend's current catalog.
func (s *Server) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// FailProductList makes GET /products answer 503.
func (s *Server) FailProductList(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = fail
}

// Requests lists "METHOD path" for every request received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || acc.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": acc.token, "user": acc.user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "User already exists"})
		return
	}
	s.nextID++
	user := domain.User{
		ID:    fmt.Sprintf("u%d", s.nextID),
		Name:  req.Name,
		Email: req.Email,
		Role:  domain.Role(req.Role),
	}
	acc := &account{password: req.Password, token: "token-" + user.ID, user: user}
	s.accounts[req.Email] = acc
	writeJSON(w, http.StatusCreated, map[string]any{"token": acc.token, "user": user})
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{})
		return
	}
	products := s.products
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) saveProduct(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized as admin"})
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid form"})
		return
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, _ := strconv.Atoi(r.FormValue("stock"))
	p := domain.Product{
		Name:        r.FormValue("name"),
		Price:       price,
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Stock:       stock,
		Image:       r.FormValue("image"),
	}
	if f, hdr, err := r.FormFile("image"); err == nil {
		data, _ := io.ReadAll(f)
		f.Close()
		p.Image = fmt.Sprintf("/uploads/%s?bytes=%d", hdr.Filename, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id := r.PathValue("id"); id != "" {
		for i := range s.products {
			if s.products[i].ID == id {
				p.ID = id
				s.products[i] = p
				writeJSON(w, http.StatusOK, p)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	s.nextID++
	p.ID = fmt.Sprintf("p%d", s.nextID)
	s.products = append(s.products, p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized as admin"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
}

func (s *Server) isAdmin(r *http.Request) bool {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.token == token && acc.user.IsAdmin() {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
