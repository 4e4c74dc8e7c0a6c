package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

func init() {
	// prices travel as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name         string    `gorm:"not null"                        json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"            json:"email"`
	PasswordHash string    `gorm:"column:password;not null"        json:"-"`
	Role         string    `gorm:"not null;default:customer"       json:"role"`
	CreatedAt    time.Time `                                       json:"created_at"`
}

type Category struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description *string `                                json:"description"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name        string          `gorm:"not null"                        json:"name"`
	Description *string         `                                       json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"price"`
	Stock       int             `gorm:"not null;default:0"              json:"stock"`
	ImageURL    *string         `gorm:"column:image_url"                json:"image_url"`
	CategoryID  uint            `gorm:"index"                           json:"category_id"`
	CreatedAt   time.Time       `                                       json:"created_at"`
	UpdatedAt   time.Time       `                                       json:"updated_at"`
}

type OrderStatus struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	StatusName string `gorm:"not null"                 json:"status_name"`
}

func (OrderStatus) TableName() string { return "order_status" }

type Order struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID     uint            `gorm:"index;not null"              json:"user_id"`
	StatusID   *uint           `gorm:"index"                       json:"status_id"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"index"                       json:"created_at"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID"          json:"items"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  int             `gorm:"not null"                    json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Product   *Product        `gorm:"foreignKey:ProductID"        json:"product"`
}

func All() []any {
	return []any{&User{}, &Category{}, &Product{}, &OrderStatus{}, &Order{}, &OrderItem{}}
}
