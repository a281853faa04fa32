package models

import "time"

type OrderStatus string

type PayMethod string

const (
	OrderStatusUnpaid   OrderStatus = "UNPAID"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusShipped  OrderStatus = "SHIPPED"
	OrderStatusReceived OrderStatus = "RECEIVED"

	PayMethodCOD    PayMethod = "cod"
	PayMethodAlipay PayMethod = "alipay"
	PayMethodWechat PayMethod = "wechat"
	PayMethodCard   PayMethod = "card"
)

// Wire value -> display label. Looked up at read time only; the stored
// status is always the wire value.
var OrderStatusLabels = map[OrderStatus]string{
	OrderStatusUnpaid:   "Awaiting Payment",
	OrderStatusPaid:     "Paid",
	OrderStatusShipped:  "Shipped",
	OrderStatusReceived: "Received",
}

var PayMethodLabels = map[PayMethod]string{
	PayMethodCOD:    "Cash on Delivery",
	PayMethodAlipay: "Alipay",
	PayMethodWechat: "WeChat Pay",
	PayMethodCard:   "Bank Card",
}

func (s OrderStatus) Label() string {
	if label, ok := OrderStatusLabels[s]; ok {
		return label
	}

	return string(s)
}

func (m PayMethod) Label() string {
	if label, ok := PayMethodLabels[m]; ok {
		return label
	}

	return string(m)
}

func (m PayMethod) Valid() bool {
	_, ok := PayMethodLabels[m]

	return ok
}

type Order struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"user_id"`
	AddressID   int64           `json:"address_id"`
	PayMethod   PayMethod       `json:"pay_method"`
	Status      OrderStatus     `json:"status"`
	TotalCount  int64           `json:"total_count"`
	TotalAmount float64         `json:"total_amount"`
	ShippingFee float64         `json:"shipping_fee"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderLineItem `json:"items,omitempty"`
}

// OrderLineItem captures the unit price at the moment of commit. The
// snapshot is permanent: catalog price changes never alter it.
type OrderLineItem struct {
	OrderID  string  `json:"order_id"`
	SKUID    int64   `json:"sku_id"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// Read-side projections for order history. Labels and line amounts are
// computed from stored values when the view is built.
type OrderLineView struct {
	SKUID    int64   `json:"sku_id"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
}

type OrderView struct {
	ID             string          `json:"id"`
	Status         OrderStatus     `json:"status"`
	StatusLabel    string          `json:"status_label"`
	PayMethod      PayMethod       `json:"pay_method"`
	PayMethodLabel string          `json:"pay_method_label"`
	TotalCount     int64           `json:"total_count"`
	TotalAmount    float64         `json:"total_amount"`
	ShippingFee    float64         `json:"shipping_fee"`
	CreatedAt      time.Time       `json:"created_at"`
	Items          []OrderLineView `json:"items"`
}

type PreviewRequest struct {
	SKUIDs []int64 `json:"sku_ids" validate:"required,min=1"`
	// Count switches the preview into the buy-now path when present.
	Count *int64 `json:"count,omitempty" validate:"omitempty,gt=0"`
}

type PreviewLine struct {
	Product  *Product `json:"product"`
	Quantity int64    `json:"quantity"`
	Amount   float64  `json:"amount"`
}

type OrderPreview struct {
	Lines          []PreviewLine `json:"lines"`
	TotalCount     int64         `json:"total_count"`
	GoodsAmount    float64       `json:"goods_amount"`
	ShippingFee    float64       `json:"shipping_fee"`
	TotalAmount    float64       `json:"total_amount"`
	DefaultAddress *Address      `json:"default_address,omitempty"`
	SKUIDs         string        `json:"sku_ids"`
}

type CommitOrderRequest struct {
	AddressID int64  `json:"address_id" validate:"required"`
	PayMethod string `json:"pay_method" validate:"required"`
	// Comma-joined sku id list, e.g. "3,5,9".
	SKUIDs string `json:"sku_ids" validate:"required"`
}

type CommitOrderResponse struct {
	OrderID     string  `json:"order_id"`
	TotalCount  int64   `json:"total_count"`
	TotalAmount float64 `json:"total_amount"`
}
