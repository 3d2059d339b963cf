package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for outgoing calls; empty means anonymous.
type TokenSource interface {
	Token() string
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type response struct {
	status int
	body   []byte
}

var errServerStatus = errors.New("server error")

// Client talks to the remote product/auth API. Transport errors and 5xx responses
// count against a circuit breaker; 4xx responses are ordinary service errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	cb         *gobreaker.CircuitBreaker[*response]
	log        *zap.Logger
}

// NewClient builds a client whose requests go through the circuit breaker.
func NewClient(cfg config.API, tokens TokenSource, log *zap.Logger) *Client {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	cb := gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:    "storefront-backend",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: tokens,
		cb:     cb,
		log:    log,
	}
}

// Login exchanges credentials for a token and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, "register", http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts fetches the whole catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.doJSON(ctx, "list products", http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct posts in as a multipart form with the bearer token.
func (c *Client) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if in.Stock == nil {
		zero := 0
		in.Stock = &zero
	}
	return c.sendProduct(ctx, "create product", http.MethodPost, "/products", in)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	return c.sendProduct(ctx, "update product", http.MethodPut, "/products/"+url.PathEscape(id), in)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete product", http.MethodDelete, "/products/"+url.PathEscape(id), nil, "")
	return err
}

func (c *Client) sendProduct(ctx context.Context, op, method, path string, in domain.ProductInput) (domain.Product, error) {
	body, contentType, err := encodeProductForm(in)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := c.do(ctx, op, method, path, body, contentType)
	if err != nil {
		return domain.Product{}, err
	}

	var p domain.Product
	if err := json.Unmarshal(res.body, &p); err != nil {
		return domain.Product{}, &ServiceError{Op: op, StatusCode: res.status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return p, nil
}

func encodeProductForm(in domain.ProductInput) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"name", in.Name},
		{"price", strconv.FormatFloat(in.Price, 'f', -1, 64)},
		{"description", in.Description},
		{"category", in.Category},
	}
	if in.Stock != nil {
		fields = append(fields, [2]string{"stock", strconv.Itoa(*in.Stock)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	switch {
	case in.Image.IsFile():
		part, err := w.CreateFormFile("image", in.Image.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return nil, "", err
		}
	case strings.TrimSpace(in.Image.URL) != "":
		if err := w.WriteField("image", in.Image.URL); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	res, err := c.do(ctx, op, method, path, body, contentType)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return &ServiceError{Op: op, StatusCode: res.status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*response, error) {
	log := logger.WithTrace(ctx, c.log).With(zap.String("op", op), zap.String("method", method), zap.String("path", path))
	start := time.Now()

	res, err := c.cb.Execute(func() (*response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		r := &response{status: resp.StatusCode, body: data}
		if resp.StatusCode >= http.StatusInternalServerError {
			return r, errServerStatus
		}
		return r, nil
	})

	if res == nil {
		log.Warn("backend request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, &ServiceError{Op: op, Err: err}
	}

	log.Debug("backend response", zap.Int("status", res.status), zap.Duration("elapsed", time.Since(start)))
	if res.status < 200 || res.status >= 300 {
		return nil, &ServiceError{
			Op:         op,
			StatusCode: res.status,
			Message:    errorMessage(res.body),
			Err:        err,
		}
	}
	return res, nil
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
