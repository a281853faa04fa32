package models

import "time"

type Address struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Receiver  string    `json:"receiver"`
	Province  string    `json:"province"`
	City      string    `json:"city"`
	District  string    `json:"district"`
	Detail    string    `json:"detail"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateAddressRequest struct {
	Receiver string `json:"receiver" validate:"required"`
	Province string `json:"province" validate:"required"`
	City     string `json:"city" validate:"required"`
	District string `json:"district" validate:"required"`
	Detail   string `json:"detail" validate:"required"`
	Phone    string `json:"phone" validate:"required,min=6,max=20"`
}
