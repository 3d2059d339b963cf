package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/backend/backendtest"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

// setupCLI points the CLI at a fake backend and a fresh sqlite session file,
// so state carries over between invocations like it does for a real user.
func setupCLI(t *testing.T) *backendtest.Server {
	b := backendtest.NewServer(t)
	b.AddProducts(
		domain.Product{ID: "a", Name: "Lamp", Price: 10, Category: "Home"},
		domain.Product{ID: "b", Name: "Chair", Price: 45.5, Category: "Office"},
	)
	b.AddUser("bob@x.com", "secret1", domain.User{ID: "bob", Name: "Bob", Role: domain.RoleUser})
	b.AddUser("root@x.com", "admin1", domain.User{ID: "root", Name: "Root", Role: domain.RoleAdmin})

	t.Setenv("STOREFRONT_API_URL", b.URL+"/api")
	t.Setenv("STOREFRONT_STORE_DRIVER", "sqlite")
	t.Setenv("STOREFRONT_STORE_PATH", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("LOG_LEVEL", "error")

	jsonOutput = false
	cartAddQty = 1
	t.Cleanup(func() { jsonOutput = false })
	return b
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestCLI_ShoppingSession(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "products")
	assert.Contains(t, out, "Lamp")
	assert.Contains(t, out, "$45.50")

	_, err := execute(t, "cart", "add", "a")
	assert.EqualError(t, err, domain.ErrUnauthorized.Error())

	out = mustExecute(t, "login", "--email", "bob@x.com", "--password", "secret1")
	assert.Contains(t, out, "Welcome, Bob!")

	out = mustExecute(t, "cart", "add", "a", "--qty", "2")
	assert.Contains(t, out, "Lamp added to cart!")

	out = mustExecute(t, "cart", "show")
	assert.Contains(t, out, "[cart]")
	assert.Contains(t, out, "$20.00")
	assert.Contains(t, out, "$2.00")
	assert.Contains(t, out, "$22.00")

	mustExecute(t, "cart", "set", "a", "0")
	out = mustExecute(t, "cart", "show")
	assert.Contains(t, out, "Your cart is empty.")

	_, err = execute(t, "checkout")
	assert.EqualError(t, err, "Your cart is empty!")

	mustExecute(t, "cart", "add", "b", "--qty", "1")
	out = mustExecute(t, "checkout")
	assert.Contains(t, out, app.NoticeOrderPlaced)
	assert.Contains(t, out, "$50.05")

	out = mustExecute(t, "logout")
	assert.Contains(t, out, app.NoticeLoggedOut)
	out = mustExecute(t, "whoami")
	assert.Contains(t, out, "not logged in")
}

func TestCLI_NavJSON(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "nav", "cart", "--json")

	var res app.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.PageHome, res.State.Page)
	assert.Equal(t, "login required", res.Signal)

	_, err := execute(t, "nav", "attic")
	assert.Error(t, err)
}

func TestCLI_Admin(t *testing.T) {
	b := setupCLI(t)

	out := mustExecute(t, "login", "--email", "root@x.com", "--password", "admin1")
	assert.Contains(t, out, "[admin]")

	out = mustExecute(t, "admin", "create", "--name", "Desk", "--price", "120", "--stock", "3", "--image-url", "https://img/desk.png")
	assert.Contains(t, out, app.NoticeProductAdded)
	assert.Contains(t, out, "Desk")
	assert.Len(t, b.Products(), 3)

	out = mustExecute(t, "admin", "delete", "b")
	assert.Contains(t, out, app.NoticeProductDeleted)

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	mustExecute(t, "admin", "export", "-o", path)
	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.NotNil(t, wb.Sheet["Products"])
	assert.Len(t, wb.Sheet["Products"].Rows, 3)
}

func TestCLI_RegisterIgnoresRole(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "register", "--name", "Cy", "--email", "cy@x.com",
		"--password", "123456", "--confirm", "123456", "--role", "Admin", "--json")

	var res app.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.AuthenticatedUser, res.State.Auth)

	_, err := execute(t, "register", "--email", "dee@x.com", "--password", "123", "--confirm", "123")
	assert.EqualError(t, err, "Password must be at least 6 characters")
}
