package handlers_test

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/freshmart/storefront/internal/api/handlers"
	"github.com/freshmart/storefront/internal/api/middleware"
	"github.com/freshmart/storefront/internal/config"
	"github.com/freshmart/storefront/internal/models"
	service "github.com/freshmart/storefront/internal/services"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductRepo struct {
	products map[int64]*models.Product
}

func (r *stubProductRepo) CreateProduct(_ context.Context, _ *models.Product) error {
	return errors.New("not implemented")
}

func (r *stubProductRepo) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	return product, nil
}

func (r *stubProductRepo) UpdateProduct(_ context.Context, _ *models.Product) error {
	return errors.New("not implemented")
}

func (r *stubProductRepo) ListProducts(_ context.Context, _, _ int) ([]*models.Product, int, error) {
	return nil, 0, errors.New("not implemented")
}

func newCartHandler(t *testing.T) (*handlers.CartHandler, redismock.ClientMock) {
	t.Helper()

	repo := &stubProductRepo{products: map[int64]*models.Product{
		3: {ID: 3, Name: "Gala Apple", Price: 10, Stock: 100},
	}}

	client, mock := redismock.NewClientMock()
	cookieCfg := &config.CookieCart{Name: "cart", MaxAge: 1209600}

	return handlers.NewCartHandler(service.NewCartService(repo), client, cookieCfg), mock
}

func withClaims(r *http.Request, userID int64) *http.Request {
	claims := &models.Claims{UserID: userID}

	return r.WithContext(context.WithValue(r.Context(), middleware.UserContextKey, claims))
}

func TestCartHandlerAnonymous(t *testing.T) {
	t.Run("add writes the cart back as a cookie", func(t *testing.T) {
		handler, _ := newCartHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"sku_id":3,"quantity":2}`))
		rr := httptest.NewRecorder()

		handler.AddItem().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "cart", cookies[0].Name)

		decoded, err := url.QueryUnescape(cookies[0].Value)
		require.NoError(t, err)
		assert.JSONEq(t, `{"3":2}`, decoded)

		assert.JSONEq(t, `{"success":true,"data":{"cart_count":2}}`, rr.Body.String())
	})

	t.Run("add stacks onto the cookie-held quantity", func(t *testing.T) {
		handler, _ := newCartHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"sku_id":3,"quantity":2}`))
		req.AddCookie(&http.Cookie{Name: "cart", Value: url.QueryEscape(`{"3":1}`)})
		rr := httptest.NewRecorder()

		handler.AddItem().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"data":{"cart_count":3}}`, rr.Body.String())
	})

	t.Run("get does not emit a cookie for a read", func(t *testing.T) {
		handler, _ := newCartHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.AddCookie(&http.Cookie{Name: "cart", Value: url.QueryEscape(`{"3":2}`)})
		rr := httptest.NewRecorder()

		handler.GetCart().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Result().Cookies(), "reads must not rewrite the cookie")
		assert.Contains(t, rr.Body.String(), `"total_amount":20`)
	})

	t.Run("unknown product maps to the taxonomy code", func(t *testing.T) {
		handler, _ := newCartHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"sku_id":99,"quantity":1}`))
		rr := httptest.NewRecorder()

		handler.AddItem().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "PRODUCT_NOT_FOUND")
	})

	t.Run("zero quantity maps to the quantity format code", func(t *testing.T) {
		handler, _ := newCartHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"sku_id":3,"quantity":0}`))
		rr := httptest.NewRecorder()

		handler.AddItem().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "QUANTITY_FORMAT_ERROR")
	})

	t.Run("non-integer quantity maps to the quantity format code", func(t *testing.T) {
		handler, _ := newCartHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"sku_id":3,"quantity":"two"}`))
		rr := httptest.NewRecorder()

		handler.AddItem().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "QUANTITY_FORMAT_ERROR")
	})

	t.Run("missing sku id stays a generic validation error", func(t *testing.T) {
		handler, _ := newCartHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"quantity":2}`))
		rr := httptest.NewRecorder()

		handler.AddItem().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
	})
}

func TestCartHandlerAuthenticated(t *testing.T) {
	t.Run("add goes to the account's redis hash", func(t *testing.T) {
		handler, mock := newCartHandler(t)

		mock.ExpectHGet("cart_42", "3").RedisNil()
		mock.ExpectHSet("cart_42", "3", int64(2)).SetVal(1)
		mock.ExpectHGetAll("cart_42").SetVal(map[string]string{"3": "2"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"sku_id":3,"quantity":2}`))
		req = withClaims(req, 42)
		rr := httptest.NewRecorder()

		handler.AddItem().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Empty(t, rr.Result().Cookies(), "authenticated carts never touch the cookie")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("remove deletes the hash field", func(t *testing.T) {
		handler, mock := newCartHandler(t)

		mock.ExpectHDel("cart_42", "3").SetVal(1)
		mock.ExpectHGetAll("cart_42").SetVal(map[string]string{})

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items", strings.NewReader(`{"sku_id":3}`))
		req = withClaims(req, 42)
		rr := httptest.NewRecorder()

		handler.RemoveItem().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
