package handlers

import (
	"log/slog"
	"net/http"

	"github.com/freshmart/storefront/internal/api/middleware"
	"github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/models"
	service "github.com/freshmart/storefront/internal/services"
	"github.com/freshmart/storefront/internal/utils"
	"github.com/freshmart/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type AddressHandler struct {
	addressService *service.AddressService
	validator      *validator.Validate
}

func NewAddressHandler(addressService *service.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		validator:      validator.New(),
	}
}

// CreateAddress godoc
//	@Summary		Add a shipping address
//	@Description	Stores a new address for the authenticated account. The newest address becomes the checkout default.
//	@Tags			Addresses
//	@Accept			json
//	@Produce		json
//	@Param			address	body		models.CreateAddressRequest	true	"Address details"
//	@Success		201		{object}	models.Address				"Created address"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Security		BearerAuth
//	@Router			/addresses [post]
func (h *AddressHandler) CreateAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized address creation attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.CreateAddressRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create address input")
			return
		}

		address, err := h.addressService.CreateAddress(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to create address", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Address created", slog.Int64("addressId", address.ID))
		response.Success(w, http.StatusCreated, address)
	}
}
