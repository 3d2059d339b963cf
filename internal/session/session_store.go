package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	KeySessionID   = "sessionId"
	KeyAuthToken   = "authToken"
	KeyCurrentUser = "currentUser"
	KeyCart        = "cart"
)

const cartFormatVersion = 1

// cartEnvelope is the persisted cart format; older clients wrote a bare JSON array.
type cartEnvelope struct {
	Version int               `json:"version"`
	Owner   string            `json:"owner,omitempty"`
	Lines   []domain.CartLine `json:"lines"`
}

// legacyLine is a product object with a quantity, as stored by the browser client.
type legacyLine struct {
	ID       string  `json:"id"`
	MongoID  string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// Store persists the session. Read and write failures are logged and treated as
// an absent value; nothing here fails the caller's flow.
type Store struct {
	kv  store.Store
	log *zap.Logger
	now func() time.Time
}

// NewStore wraps kv; the caller keeps ownership of it.
func NewStore(kv store.Store, log *zap.Logger) *Store {
	return &Store{
		kv:  kv,
		log: log,
		now: time.Now,
	}
}

// SessionID returns the persisted session id, creating it on first use.
func (s *Store) SessionID(ctx context.Context) string {
	if id, ok := s.get(ctx, KeySessionID); ok && id != "" {
		return id
	}
	id := newSessionID(s.now())
	s.set(ctx, KeySessionID, id)
	return id
}

func newSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

// Save writes token, user and cart as independent keys. Auth keys are removed
// when the session is anonymous.
func (s *Store) Save(ctx context.Context, sess domain.Session) {
	if sess.Token != "" && sess.User != nil {
		s.SaveAuth(ctx, sess.Token, *sess.User)
	} else {
		s.ClearAuth(ctx)
	}
	s.SaveCart(ctx, sess.Cart)
}

// SaveAuth writes the token and the user record.
func (s *Store) SaveAuth(ctx context.Context, token string, user domain.User) {
	data, err := json.Marshal(user)
	if err != nil {
		s.log.Error("failed to encode user", zap.Error(err))
		return
	}
	s.set(ctx, KeyAuthToken, token)
	s.set(ctx, KeyCurrentUser, string(data))
}

// SaveCart writes the cart envelope, owner included.
func (s *Store) SaveCart(ctx context.Context, cart domain.Cart) {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(cartEnvelope{Version: cartFormatVersion, Owner: cart.Owner, Lines: lines})
	if err != nil {
		s.log.Error("failed to encode cart", zap.Error(err))
		return
	}
	s.set(ctx, KeyCart, string(data))
}

// ClearAuth removes token and user; the cart is left alone.
func (s *Store) ClearAuth(ctx context.Context) {
	if err := s.kv.Delete(ctx, KeyAuthToken, KeyCurrentUser); err != nil {
		s.log.Warn("failed to clear auth", zap.Error(err))
	}
}

// Restore reads the session back. Missing or corrupt values come back empty.
// A cart with no recorded owner, as written by older clients, is attributed to
// the restored user when there is one.
func (s *Store) Restore(ctx context.Context) domain.Session {
	sess := domain.Session{ID: s.SessionID(ctx)}

	token, hasToken := s.get(ctx, KeyAuthToken)
	rawUser, hasUser := s.get(ctx, KeyCurrentUser)
	if hasToken && hasUser && token != "" {
		var u domain.User
		switch err := json.Unmarshal([]byte(rawUser), &u); {
		case err != nil:
			s.log.Warn("discarding corrupt user record", zap.Error(err))
		case tokenExpired(token, s.now()):
			s.log.Info("discarding expired auth token", zap.String("user_id", u.ID))
		default:
			sess.Token = token
			sess.User = &u
		}
	}

	if raw, ok := s.get(ctx, KeyCart); ok {
		cart, err := decodeCart(raw)
		if err != nil {
			s.log.Warn("discarding corrupt cart", zap.Error(err))
		} else {
			sess.Cart = cart
		}
	}
	if sess.Cart.Owner == "" && sess.User != nil && !sess.Cart.IsEmpty() {
		sess.Cart.Owner = sess.User.ID
	}
	return sess
}

func decodeCart(raw string) (domain.Cart, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var legacy []legacyLine
		if err := json.Unmarshal([]byte(trimmed), &legacy); err != nil {
			return domain.Cart{}, fmt.Errorf("unmarshal legacy cart failed: %w", err)
		}
		cart := domain.Cart{}
		for _, l := range legacy {
			id := l.MongoID
			if id == "" {
				id = l.ID
			}
			cart.Lines = append(cart.Lines, domain.CartLine{
				ProductID: id,
				Name:      l.Name,
				Price:     l.Price,
				Image:     l.Image,
				Quantity:  l.Quantity,
			})
		}
		return cart.Normalize(), nil
	}

	var env cartEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return domain.Cart{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if env.Version != cartFormatVersion {
		return domain.Cart{}, fmt.Errorf("unsupported cart version %d", env.Version)
	}
	return domain.Cart{Owner: env.Owner, Lines: env.Lines}.Normalize(), nil
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens are trusted until the backend rejects them.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("session store read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return v, true
}

func (s *Store) set(ctx context.Context, key, value string) {
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.log.Warn("session store write failed", zap.String("key", key), zap.Error(err))
	}
}
