package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		// A quantity that is not an integer fails the decode itself; that
		// is a format problem, not a missing field.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && isQuantityField(typeErr.Field) {
			response.Error(w, apperrors.QuantityFormatError("Quantity must be a positive integer").WithError(err))
			return false
		}

		response.Error(w, apperrors.MissingParameterError("Invalid or missing request body").WithError(err))
		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				if isQuantityField(fieldErr.Field()) {
					response.Error(w, apperrors.QuantityFormatError("Quantity must be a positive integer").WithError(err))
					return false
				}
			}
		}

		response.Error(w, apperrors.ValidationError("Invalid input data").WithError(err))
		return false
	}

	return true
}

// isQuantityField matches the quantity-carrying request fields by both
// their JSON names (decode errors) and struct names (validator errors).
func isQuantityField(field string) bool {
	switch field {
	case "quantity", "count", "Quantity", "Count":
		return true
	}

	return false
}

// ParseID reads an int64 path value, e.g. a product id or order page.
func ParseID(r *http.Request, name string) (int64, error) {

	raw := r.PathValue(name)
	if raw == "" {
		return 0, apperrors.MissingParameterError("Missing path parameter: " + name)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.BadRequestError("Invalid path parameter: " + name).WithError(err)
	}

	return id, nil
}
