package models

// CartItemView is the read-side projection of one cart entry, expanded
// against the live catalog. Display-only fields (line amount) are computed
// here, never written back to the product.
type CartItemView struct {
	Product  *Product `json:"product"`
	Quantity int64    `json:"quantity"`
	Amount   float64  `json:"amount"`
}

type CartSummary struct {
	Items       []CartItemView `json:"items"`
	TotalCount  int64          `json:"total_count"`
	TotalAmount float64        `json:"total_amount"`
}

type AddCartItemRequest struct {
	SKUID    int64 `json:"sku_id" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	SKUID    int64 `json:"sku_id" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

type DeleteCartItemRequest struct {
	SKUID int64 `json:"sku_id" validate:"required"`
}

type AddCartItemResponse struct {
	CartCount int64 `json:"cart_count"`
}
