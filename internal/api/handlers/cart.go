package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/freshmart/storefront/internal/api/middleware"
	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/config"
	"github.com/freshmart/storefront/internal/models"
	service "github.com/freshmart/storefront/internal/services"
	"github.com/freshmart/storefront/internal/utils"
	"github.com/freshmart/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
)

type CartHandler struct {
	cartService *service.CartService
	redisClient *redis.Client
	cookieCfg   *config.CookieCart
	validator   *validator.Validate
}

func NewCartHandler(cartService *service.CartService, redisClient *redis.Client, cookieCfg *config.CookieCart) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		redisClient: redisClient,
		cookieCfg:   cookieCfg,
		validator:   validator.New(),
	}
}

// storeForRequest picks the cart backend by identity: authenticated
// requests get the account's redis hash, anonymous requests get the cart
// decoded from their cookie. The cookie store is also returned separately
// so mutations can be flushed back into a Set-Cookie.
func (h *CartHandler) storeForRequest(r *http.Request) (cart.Store, *cart.CookieStore) {

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return cart.NewRedisStore(h.redisClient, claims.UserID), nil
	}

	var cookieValue string
	if c, err := r.Cookie(h.cookieCfg.Name); err == nil {
		// The JSON is URL-escaped on the wire; cookie values cannot carry
		// quotes or commas. A value that fails to unescape decodes as an
		// empty cart.
		if unescaped, err := url.QueryUnescape(c.Value); err == nil {
			cookieValue = unescaped
		}
	}

	cookieStore := cart.NewCookieStore(cookieValue)

	return cookieStore, cookieStore
}

// flushCookie re-encodes a mutated anonymous cart into the response.
func (h *CartHandler) flushCookie(w http.ResponseWriter, logger *slog.Logger, cookieStore *cart.CookieStore) {

	if cookieStore == nil || !cookieStore.Dirty() {
		return
	}

	encoded, err := cookieStore.Encode()
	if err != nil {
		logger.Error("Failed to encode cart cookie", slog.Any("error", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieCfg.Name,
		Value:    url.QueryEscape(encoded),
		Path:     "/",
		MaxAge:   h.cookieCfg.MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// AddItem godoc
//	@Summary		Add a product to the cart
//	@Description	Adds the requested quantity on top of what the cart already holds. Anonymous carts live in a cookie.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddCartItemRequest	true	"Product and quantity"
//	@Success		200		{object}	models.AddCartItemResponse	"Updated cart item count"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		404		{object}	response.ErrorResponse		"Product not found"
//	@Failure		409		{object}	response.ErrorResponse		"Insufficient stock"
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.AddCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add cart item input")
			return
		}

		store, cookieStore := h.storeForRequest(r)

		result, err := h.cartService.AddItem(r.Context(), store, &req)
		if err != nil {
			logger.Error("Failed to add cart item", slog.Int64("skuId", req.SKUID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		h.flushCookie(w, logger, cookieStore)

		logger.Info("Cart item added", slog.Int64("skuId", req.SKUID), slog.Int64("cartCount", result.CartCount))
		response.Success(w, http.StatusOK, result)
	}
}

// UpdateItem godoc
//	@Summary		Set a cart item's quantity
//	@Description	Overwrites the stored quantity for a product. Idempotent.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.UpdateCartItemRequest	true	"Product and absolute quantity"
//	@Success		200		{object}	models.AddCartItemResponse		"Updated cart item count"
//	@Failure		400		{object}	response.ErrorResponse			"Validation error"
//	@Failure		404		{object}	response.ErrorResponse			"Product not found"
//	@Failure		409		{object}	response.ErrorResponse			"Insufficient stock"
//	@Router			/cart/items [put]
func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.UpdateCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update cart item input")
			return
		}

		store, cookieStore := h.storeForRequest(r)

		result, err := h.cartService.UpdateItem(r.Context(), store, &req)
		if err != nil {
			logger.Error("Failed to update cart item", slog.Int64("skuId", req.SKUID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		h.flushCookie(w, logger, cookieStore)

		logger.Info("Cart item updated", slog.Int64("skuId", req.SKUID))
		response.Success(w, http.StatusOK, result)
	}
}

// RemoveItem godoc
//	@Summary		Remove a product from the cart
//	@Description	Deletes the entry. Removing an absent product succeeds.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.DeleteCartItemRequest	true	"Product to remove"
//	@Success		200		{object}	models.AddCartItemResponse		"Updated cart item count"
//	@Failure		400		{object}	response.ErrorResponse			"Validation error"
//	@Router			/cart/items [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.DeleteCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid delete cart item input")
			return
		}

		store, cookieStore := h.storeForRequest(r)

		result, err := h.cartService.RemoveItem(r.Context(), store, &req)
		if err != nil {
			logger.Error("Failed to remove cart item", slog.Int64("skuId", req.SKUID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		h.flushCookie(w, logger, cookieStore)

		logger.Info("Cart item removed", slog.Int64("skuId", req.SKUID))
		response.Success(w, http.StatusOK, result)
	}
}

// GetCart godoc
//	@Summary		Get the cart contents
//	@Description	Expands the stored entries against the catalog, with line amounts and totals. Delisted products are skipped.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartSummary		"Cart contents"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		store, _ := h.storeForRequest(r)

		summary, err := h.cartService.CartInfo(r.Context(), store)
		if err != nil {
			logger.Error("Failed to load cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, summary)
	}
}
