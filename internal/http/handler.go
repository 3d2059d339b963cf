package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/export"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const exportFileName = "products.xlsx"

type Handler struct {
	ctrl  *app.Controller
	media config.Media
	log   *zap.Logger
}

// NewHandler binds the HTTP surface to one controller.
func NewHandler(ctrl *app.Controller, media config.Media, log *zap.Logger) *Handler {
	return &Handler{
		ctrl:  ctrl,
		media: media,
		log:   log,
	}
}

type NavigateRequestDTO struct {
	Page string `json:"page"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity float64 `json:"quantity"`
}

type ContactRequestDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string     `json:"error"`
	Code    string     `json:"code,omitempty"`
	Details string     `json:"details,omitempty"`
	State   *app.State `json:"state,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetState returns the current state without applying an action.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.ctrl.State())
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	page, err := domain.ParsePage(req.Page)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}
	h.dispatch(w, r, app.Navigate{Page: page})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.dispatch(w, r, app.Login{Email: req.Email, Password: req.Password})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.dispatch(w, r, app.Register{RegisterInput: service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            domain.Role(req.Role),
	}})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, app.Logout{})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.ctrl.Products()
	if products == nil {
		products = []domain.Product{}
	}
	h.respondJSON(w, http.StatusOK, products)
}

func (h *Handler) RefreshProducts(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, app.RefreshCatalog{})
}

// AddItem handles POST /api/cart/items. Quantity defaults to one.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}
	h.dispatch(w, r, app.AddToCart{ProductID: req.ProductID, Quantity: req.Quantity})
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.dispatch(w, r, app.SetQuantity{ProductID: chi.URLParam(r, "product_id"), Quantity: req.Quantity})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, app.RemoveFromCart{ProductID: chi.URLParam(r, "product_id")})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, app.Checkout{})
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.dispatch(w, r, app.SubmitContact{Name: req.Name, Email: req.Email, Message: req.Message})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, "")
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, app.DeleteProduct{ID: chi.URLParam(r, "id")})
}

// ExportProducts streams the catalog as an xlsx attachment. Admin only.
func (h *Handler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.ctrl.ExportCatalog(r.Context(), &buf); err != nil {
		h.respondActionError(w, nil, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warn("failed to write export", zap.Error(err))
	}
}

// saveProduct reads the admin product form: name, price, description,
// category, stock, and either an image_url field or an image_file upload.
func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseMultipartForm(h.media.MaxUploadBytes + 1<<20); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_form", "invalid multipart form")
		return
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_price", "price must be a number")
		return
	}
	in := domain.ProductInput{
		Name:        r.FormValue("name"),
		Price:       price,
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}
	if raw := strings.TrimSpace(r.FormValue("stock")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_stock", "stock must be an integer")
			return
		}
		in.Stock = &stock
	}

	var (
		fileName string
		data     []byte
	)
	if f, hdr, err := r.FormFile("image_file"); err == nil {
		data, err = io.ReadAll(f)
		f.Close()
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_image", "failed to read image upload")
			return
		}
		fileName = hdr.Filename
	}

	in.Image, err = app.ImageFromForm(h.media, r.FormValue("image_url"), fileName, data)
	if err != nil {
		h.respondActionError(w, nil, err)
		return
	}
	h.dispatch(w, r, app.SaveProduct{ID: id, Input: in})
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, a app.Action) {
	res, err := h.ctrl.Dispatch(r.Context(), a)
	if err != nil {
		h.respondActionError(w, &res.State, err)
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

func (h *Handler) respondActionError(w http.ResponseWriter, state *app.State, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	h.respondJSON(w, status, ErrorResponse{
		Error: err.Error(),
		Code:  code,
		State: state,
	})
}

func classify(err error) (int, string) {
	var (
		actionErr  *service.ActionError
		serviceErr *backend.ServiceError
	)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrAdminRequired):
		return http.StatusForbidden, "admin_required"
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation_failed"
	case errors.As(err, &actionErr), errors.As(err, &serviceErr):
		return http.StatusBadGateway, "backend_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
