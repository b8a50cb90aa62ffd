package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minjukim/wishmall/internal/models"
)

func checkoutBody() map[string]any {
	return map[string]any{
		"customer": map[string]string{
			"name":    "Kim Minju",
			"phone":   "010-1234-5678",
			"address": "Seoul",
		},
		"payment": map[string]string{
			"bank":     "Kakao Bank",
			"password": "123456",
		},
	}
}

func fillCart(t *testing.T, env *testEnv, username string, lines ...models.CartItem) uint {
	t.Helper()
	var user models.User
	require.NoError(t, env.DB.Where("username = ?", username).First(&user).Error)
	for i := range lines {
		lines[i].UserID = user.ID
		require.NoError(t, env.DB.Create(&lines[i]).Error)
	}
	return user.ID
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	ck := login(t, env, "alice")

	userID := fillCart(t, env, "alice",
		models.CartItem{ProductID: 1, Name: "Coat", Price: 50000, Quantity: 2},
		models.CartItem{ProductID: 2, Name: "Boots", Price: 20000, Quantity: 1},
	)

	before := time.Now().UTC().Add(-time.Second)
	rec, c := env.doJSONRequest(http.MethodPost, "/orders", checkoutBody(), ck)
	require.NoError(t, env.O.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.ID)
	require.EqualValues(t, 120000, resp.Total)
	require.Equal(t, []string{"Coat (x2)", "Boots (x1)"}, resp.Items)
	require.Equal(t, "Kim Minju", resp.Customer.Name)
	require.Equal(t, "Kakao Bank", resp.Payment.Bank)
	require.Equal(t, "***", resp.Payment.Password)

	stamp, err := time.Parse(time.RFC3339, resp.Date)
	require.NoError(t, err)
	require.False(t, stamp.Before(before))
	require.False(t, stamp.After(time.Now().UTC().Add(time.Second)))

	// Checkout empties the cart and the order survives it.
	var cartCount int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&cartCount).Error)
	require.Zero(t, cartCount)

	var stored models.Order
	require.NoError(t, env.DB.First(&stored, resp.ID).Error)
	require.EqualValues(t, 120000, stored.Total)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ck := login(t, env, "alice")

	_, c := env.doJSONRequest(http.MethodPost, "/orders", checkoutBody(), ck)
	he := httpError(t, env.O.CreateOrder(c))
	require.Equal(t, http.StatusBadRequest, he.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateOrderMissingFields(t *testing.T) {
	env := newTestEnv(t)
	ck := login(t, env, "alice")

	body := checkoutBody()
	body["customer"] = map[string]string{"name": "Kim Minju"}
	_, c := env.doJSONRequest(http.MethodPost, "/orders", body, ck)
	he := httpError(t, env.O.CreateOrder(c))
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t)
	ckAlice := login(t, env, "alice")
	ckBob := login(t, env, "bob")

	fillCart(t, env, "alice", models.CartItem{ProductID: 1, Name: "Coat", Price: 50000, Quantity: 1})
	rec, c := env.doJSONRequest(http.MethodPost, "/orders", checkoutBody(), ckAlice)
	require.NoError(t, env.O.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	fillCart(t, env, "alice", models.CartItem{ProductID: 2, Name: "Boots", Price: 20000, Quantity: 1})
	rec, c = env.doJSONRequest(http.MethodPost, "/orders", checkoutBody(), ckAlice)
	require.NoError(t, env.O.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = env.doJSONRequest(http.MethodGet, "/orders", nil, ckAlice)
	require.NoError(t, env.O.ListOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 2)
	// Newest first.
	require.Equal(t, []string{"Boots (x1)"}, orders[0].Items)
	require.Equal(t, []string{"Coat (x1)"}, orders[1].Items)

	rec, c = env.doJSONRequest(http.MethodGet, "/orders", nil, ckBob)
	require.NoError(t, env.O.ListOrders(c))

	var bobOrders []OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bobOrders))
	require.Empty(t, bobOrders)
}

func TestDeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	ck := login(t, env, "alice")

	fillCart(t, env, "alice", models.CartItem{ProductID: 1, Name: "Coat", Price: 50000, Quantity: 1})
	rec, c := env.doJSONRequest(http.MethodPost, "/orders", checkoutBody(), ck)
	require.NoError(t, env.O.CreateOrder(c))

	var created OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec, c = env.doJSONRequest(http.MethodDelete, "/orders/:id", nil, ck)
	c.SetParamNames("id")
	c.SetParamValues("424242")
	he := httpError(t, env.O.DeleteOrder(c))
	require.Equal(t, http.StatusNotFound, he.Code)

	// A failed delete leaves the orders list unchanged.
	var count int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	rec, c = env.doJSONRequest(http.MethodDelete, "/orders/:id", nil, ck)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))
	require.NoError(t, env.O.DeleteOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)

	var lineCount int64
	require.NoError(t, env.DB.Model(&models.OrderItem{}).Count(&lineCount).Error)
	require.Zero(t, lineCount)
}

// DeleteOrder only matches orders owned by the caller.
func TestDeleteOrderWrongUser(t *testing.T) {
	env := newTestEnv(t)
	ckAlice := login(t, env, "alice")
	ckBob := login(t, env, "bob")

	fillCart(t, env, "alice", models.CartItem{ProductID: 1, Name: "Coat", Price: 50000, Quantity: 1})
	rec, c := env.doJSONRequest(http.MethodPost, "/orders", checkoutBody(), ckAlice)
	require.NoError(t, env.O.CreateOrder(c))

	var created OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	_, c = env.doJSONRequest(http.MethodDelete, "/orders/:id", nil, ckBob)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))
	he := httpError(t, env.O.DeleteOrder(c))
	require.Equal(t, http.StatusNotFound, he.Code)
}
