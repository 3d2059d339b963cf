package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_UnmarshalMongoID(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{"_id":"abc","name":"Lamp","price":12.5,"stock":3}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, 3, p.Stock)

	err = json.Unmarshal([]byte(`{"id":"p-1","name":"Mug"}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
}

func TestUser_IsAdminDerivedFromRole(t *testing.T) {
	u := User{Name: "Ann", Role: RoleAdmin}
	assert.True(t, u.IsAdmin())
	assert.Equal(t, AuthenticatedAdmin, StatusFor(&u))

	u.Role = RoleUser
	assert.False(t, u.IsAdmin())
	assert.Equal(t, AuthenticatedUser, StatusFor(&u))
	assert.Equal(t, Anonymous, StatusFor(nil))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ann", User{Name: "Ann", Email: "a@x.com"}.DisplayName())
	assert.Equal(t, "a@x.com", User{Email: "a@x.com"}.DisplayName())
	assert.Equal(t, "User", User{}.DisplayName())
}

func TestCart_Normalize(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 0},
		{ProductID: "a", Quantity: 2},
		{ProductID: "", Quantity: 4},
		{ProductID: "c", Quantity: 1},
	}}

	n := c.Normalize()
	require.Len(t, n.Lines, 2)
	assert.Equal(t, "a", n.Lines[0].ProductID)
	assert.Equal(t, 3, n.Lines[0].Quantity)
	assert.Equal(t, "c", n.Lines[1].ProductID)
	assert.Equal(t, 4, n.ItemCount())
}

func TestCart_NormalizeCapsQuantityAndKeepsOwner(t *testing.T) {
	c := Cart{Owner: "bob", Lines: []CartLine{
		{ProductID: "a", Quantity: math.MaxInt},
		{ProductID: "b", Quantity: MaxQuantity},
		{ProductID: "b", Quantity: MaxQuantity},
	}}

	n := c.Normalize()
	require.Len(t, n.Lines, 2)
	assert.Equal(t, MaxQuantity, n.Lines[0].Quantity)
	assert.Equal(t, MaxQuantity, n.Lines[1].Quantity)
	assert.Equal(t, "bob", n.Owner)
	assert.Equal(t, "bob", n.Clone().Owner)
}

func TestAddQuantity(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{1, 2, 3},
		{MaxQuantity - 1, 1, MaxQuantity},
		{MaxQuantity, 1, MaxQuantity},
		{math.MaxInt, 1, MaxQuantity},
		{5, math.MaxInt, MaxQuantity},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddQuantity(tt.a, tt.b), "%d + %d", tt.a, tt.b)
	}
}

func TestComputeTotals(t *testing.T) {
	lines := []CartLine{
		{ProductID: "a", Price: 10, Quantity: 2},
		{ProductID: "b", Price: 0.35, Quantity: 3},
	}
	totals := ComputeTotals(lines)
	assert.InDelta(t, 21.05, totals.Subtotal, 1e-9)
	assert.InDelta(t, 2.105, totals.Tax, 1e-9)
	assert.InDelta(t, totals.Subtotal+totals.Tax, totals.Total, 1e-12)
	assert.Equal(t, totals, ComputeTotals(lines))

	assert.Equal(t, "$2.11", FormatMoney(totals.Tax+1e-9))
	assert.Equal(t, Totals{}, ComputeTotals(nil))
}

func TestProductInput_Validate(t *testing.T) {
	stock := -1
	img := ImagePayload{URL: "https://example.com/lamp.png"}
	cases := []struct {
		name    string
		in      ProductInput
		invalid bool
	}{
		{"missing name", ProductInput{Price: 1, Image: img}, true},
		{"negative price", ProductInput{Name: "Lamp", Price: -1, Image: img}, true},
		{"negative stock", ProductInput{Name: "Lamp", Stock: &stock, Image: img}, true},
		{"missing image", ProductInput{Name: "Lamp", Price: 1}, true},
		{"url image", ProductInput{Name: "Lamp", Price: 1, Image: img}, false},
		{"file image", ProductInput{Name: "Lamp", Image: ImagePayload{FileName: "a.png", Data: []byte{1}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.invalid {
				assert.True(t, IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.ErrorIs(t, ProductInput{Name: "Lamp"}.Validate(), ErrMissingImage)
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage("cart")
	require.NoError(t, err)
	assert.Equal(t, PageCart, p)

	_, err = ParsePage("checkout")
	assert.Error(t, err)
}

func TestSession_Status(t *testing.T) {
	assert.Equal(t, Anonymous, Session{User: &User{Role: RoleAdmin}}.Status())
	assert.Equal(t, AuthenticatedAdmin, Session{Token: "t", User: &User{Role: RoleAdmin}}.Status())
	assert.Equal(t, Anonymous, Session{Token: "t"}.Status())
}

func TestAuthStatus_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[string]AuthStatus{"auth": AuthenticatedAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"auth":"admin"}`, string(data))

	var out map[string]AuthStatus
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, AuthenticatedAdmin, out["auth"])

	var s AuthStatus
	assert.Error(t, s.UnmarshalText([]byte("root")))
}
