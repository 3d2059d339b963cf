package service

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	productA = domain.Product{ID: "a", Name: "Lamp", Price: 10, Image: "https://img/a.png", Stock: 3}
	productB = domain.Product{ID: "b", Name: "Desk", Price: 99.99, Stock: 1}
)

func newCart(status domain.AuthStatus) (*CartService, *mockPersister) {
	p := &mockPersister{}
	return NewCartService(&fixedAuth{status: status}, p, zap.NewNop()), p
}

func TestCartService_AddSameProductTwice(t *testing.T) {
	ctx := context.Background()
	svc, persist := newCart(domain.AuthenticatedUser)

	require.NoError(t, svc.AddItem(ctx, productA, 1))
	require.NoError(t, svc.AddItem(ctx, productA, 1))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Lamp", lines[0].Name)
	assert.Equal(t, "https://img/a.png", lines[0].Image)

	totals := svc.Totals()
	assert.InDelta(t, 20.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 2.0, totals.Tax, 1e-9)
	assert.InDelta(t, 22.0, totals.Total, 1e-9)

	saved, ok := persist.lastCart()
	require.True(t, ok)
	assert.Equal(t, svc.Cart(), saved)
	assert.Len(t, persist.carts, 2)
}

func TestCartService_AddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCart(domain.AuthenticatedUser)

	require.NoError(t, svc.AddItem(ctx, productB, 1))
	require.NoError(t, svc.AddItem(ctx, productA, 2))
	require.NoError(t, svc.AddItem(ctx, productB, 1))

	lines := svc.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "a", lines[1].ProductID)
	assert.Equal(t, 4, svc.ItemCount())
}

func TestCartService_AddRequiresShopper(t *testing.T) {
	for _, status := range []domain.AuthStatus{domain.Anonymous, domain.AuthenticatedAdmin} {
		t.Run(status.String(), func(t *testing.T) {
			svc, persist := newCart(status)

			err := svc.AddItem(context.Background(), productA, 1)

			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Empty(t, svc.Lines())
			assert.Empty(t, persist.carts)
		})
	}
}

func TestCartService_AddRejectsNonPositiveQuantity(t *testing.T) {
	svc, persist := newCart(domain.AuthenticatedUser)

	err := svc.AddItem(context.Background(), productA, 0)

	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.True(t, svc.Cart().IsEmpty())
	assert.Empty(t, persist.carts)
}

func TestCartService_AddCapsQuantity(t *testing.T) {
	ctx := context.Background()
	svc, persist := newCart(domain.AuthenticatedUser)

	require.NoError(t, svc.AddItem(ctx, productA, math.MaxInt))
	assert.Equal(t, domain.MaxQuantity, svc.Lines()[0].Quantity)

	require.NoError(t, svc.AddItem(ctx, productA, 1))
	require.NoError(t, svc.AddItem(ctx, productA, math.MaxInt))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, domain.MaxQuantity, lines[0].Quantity)
	saved, _ := persist.lastCart()
	assert.Equal(t, domain.MaxQuantity, saved.Lines[0].Quantity)
}

func TestCartService_AddRecordsOwner(t *testing.T) {
	p := &mockPersister{}
	svc := NewCartService(&fixedAuth{status: domain.AuthenticatedUser, userID: "bob"}, p, zap.NewNop())

	require.NoError(t, svc.AddItem(context.Background(), productA, 1))

	assert.Equal(t, "bob", svc.Owner())
	saved, _ := p.lastCart()
	assert.Equal(t, "bob", saved.Owner)
}

func TestCartService_Claim(t *testing.T) {
	held := domain.Cart{Owner: "bob", Lines: []domain.CartLine{{ProductID: "a", Price: 10, Quantity: 2}}}

	t.Run("same owner keeps lines", func(t *testing.T) {
		svc, persist := newCart(domain.AuthenticatedUser)
		svc.Replace(held)

		assert.False(t, svc.Claim(context.Background(), "bob"))
		assert.Equal(t, 2, svc.ItemCount())
		assert.Empty(t, persist.carts)
	})

	t.Run("other owner drops lines", func(t *testing.T) {
		svc, persist := newCart(domain.AuthenticatedUser)
		svc.Replace(held)

		assert.True(t, svc.Claim(context.Background(), "ann"))
		assert.True(t, svc.Cart().IsEmpty())
		saved, ok := persist.lastCart()
		require.True(t, ok)
		assert.True(t, saved.IsEmpty())
	})

	t.Run("unowned cart is adopted", func(t *testing.T) {
		svc, persist := newCart(domain.AuthenticatedUser)
		svc.Replace(domain.Cart{Lines: held.Lines})

		assert.False(t, svc.Claim(context.Background(), "ann"))
		assert.Equal(t, "ann", svc.Owner())
		assert.Equal(t, 2, svc.ItemCount())
		saved, _ := persist.lastCart()
		assert.Equal(t, "ann", saved.Owner)
	})

	t.Run("empty cart is left alone", func(t *testing.T) {
		svc, persist := newCart(domain.AuthenticatedUser)

		assert.False(t, svc.Claim(context.Background(), "ann"))
		assert.Empty(t, persist.carts)
	})
}

func TestCartService_SetQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		want     int // zero means the line is gone
	}{
		{name: "zero removes", quantity: 0, want: 0},
		{name: "negative removes", quantity: -3, want: 0},
		{name: "fraction below one removes", quantity: 0.7, want: 0},
		{name: "floors", quantity: 3.9, want: 3},
		{name: "exact", quantity: 5, want: 5},
		{name: "clamps huge", quantity: 1e12, want: math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newCart(domain.AuthenticatedUser)
			require.NoError(t, svc.AddItem(ctx, productA, 1))

			svc.SetQuantity(ctx, "a", tt.quantity)

			i, ok := svc.Cart().Find("a")
			if tt.want == 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, svc.Lines()[i].Quantity)
		})
	}
}

func TestCartService_MissingLineIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, persist := newCart(domain.AuthenticatedUser)
	require.NoError(t, svc.AddItem(ctx, productA, 1))
	writes := len(persist.carts)

	svc.SetQuantity(ctx, "missing", 4)
	svc.RemoveItem(ctx, "missing")
	svc.SetQuantity(ctx, "a", math.NaN())

	assert.Len(t, persist.carts, writes)
	assert.Equal(t, 1, svc.ItemCount())
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()
	svc, persist := newCart(domain.AuthenticatedUser)
	require.NoError(t, svc.AddItem(ctx, productA, 2))
	require.NoError(t, svc.AddItem(ctx, productB, 1))

	svc.Clear(ctx)

	assert.True(t, svc.Cart().IsEmpty())
	assert.Equal(t, domain.Totals{}, svc.Totals())
	saved, _ := persist.lastCart()
	assert.True(t, saved.IsEmpty())
}

func TestCartService_ReplaceNormalizesWithoutWriting(t *testing.T) {
	svc, persist := newCart(domain.AuthenticatedUser)

	svc.Replace(domain.Cart{Lines: []domain.CartLine{
		{ProductID: "a", Price: 1, Quantity: 1},
		{ProductID: "a", Price: 1, Quantity: 2},
		{ProductID: "b", Price: 1, Quantity: 0},
	}})

	require.Len(t, svc.Lines(), 1)
	assert.Equal(t, 3, svc.Lines()[0].Quantity)
	assert.Empty(t, persist.carts)
}

func TestCartService_ReturnedCartIsACopy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCart(domain.AuthenticatedUser)
	require.NoError(t, svc.AddItem(ctx, productA, 1))

	lines := svc.Lines()
	lines[0].Quantity = 100

	assert.Equal(t, 1, svc.Lines()[0].Quantity)
}

func TestCartService_RandomOperationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	products := []domain.Product{
		productA,
		productB,
		{ID: "c", Name: "Chair", Price: 45.5},
		{ID: "d", Name: "Rug", Price: 0.01},
	}

	svc, persist := newCart(domain.AuthenticatedUser)
	for step := 0; step < 2000; step++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(3) {
		case 0:
			qty := 1 + rng.Intn(4)
			if rng.Intn(50) == 0 {
				qty = math.MaxInt - rng.Intn(3)
			}
			_ = svc.AddItem(ctx, p, qty)
		case 1:
			svc.RemoveItem(ctx, p.ID)
		case 2:
			svc.SetQuantity(ctx, p.ID, rng.Float64()*10-3)
		}

		seen := make(map[string]bool)
		for _, l := range svc.Lines() {
			require.False(t, seen[l.ProductID], "duplicate line for %s at step %d", l.ProductID, step)
			require.GreaterOrEqual(t, l.Quantity, 1, "step %d", step)
			require.LessOrEqual(t, l.Quantity, domain.MaxQuantity, "step %d", step)
			seen[l.ProductID] = true
		}

		first, second := svc.Totals(), svc.Totals()
		require.Equal(t, first, second)
		require.InDelta(t, first.Subtotal*domain.TaxRate, first.Tax, 1e-9)
		require.InDelta(t, first.Subtotal+first.Tax, first.Total, 1e-9)
	}

	if saved, ok := persist.lastCart(); ok {
		assert.Equal(t, svc.Cart(), saved)
	}
}
