package transport

import "github.com/shopspring/decimal"

type CreateOrderItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	StatusID   *StatusRef        `json:"status_id"`
	StatusName *StatusRef        `json:"status_name"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	OrderItems []CreateOrderItem `json:"order_items"`
}

type UpdateOrderRequest struct {
	StatusID   *StatusRef       `json:"status_id"`
	StatusName *StatusRef       `json:"status_name"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	UserID     *uint            `json:"user_id"`
}

type RemovedItem struct {
	ID uint `json:"id"`
}

type DeleteOrderResponse struct {
	ID           uint          `json:"id"`
	RemovedItems []RemovedItem `json:"removedItems"`
}

type StatusRequest struct {
	StatusName string `json:"status_name"`
}

type CreateOrderItemRequest struct {
	OrderID   uint             `json:"order_id"`
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

type PatchOrderItemRequest struct {
	OrderID   *uint            `json:"order_id"`
	ProductID *uint            `json:"product_id"`
	Quantity  *int             `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type CreateProductRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"image_url"`
	CategoryID  uint             `json:"category_id"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"image_url"`
	CategoryID  *uint            `json:"category_id"`
}

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type PatchUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}
