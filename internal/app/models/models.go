package models

import (
	"time"
)

// Principal is the stable identifier of an authenticated caller, issued by
// the identity provider. It keys balance and order ownership.
type Principal string

func (p Principal) String() string {
	return string(p)
}

// All monetary values are integer paise (smallest currency subunit):
// Service.PricePer1000, Order.TotalCost, balances and top-up amounts alike.
type (
	Service struct {
		ID           int64    `json:"id"`
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		Category     Category `json:"category"`
		PricePer1000 int64    `json:"price_per_1000"`
		MinOrder     int64    `json:"min_order"`
		MaxOrder     int64    `json:"max_order"`
	}
	Order struct {
		ID        int64       `json:"id"`
		ServiceID int64       `json:"service"`
		Link      string      `json:"link"`
		Quantity  int64       `json:"quantity"`
		Status    OrderStatus `json:"status"`
		CreatedAt time.Time   `json:"created_at"`
		User      Principal   `json:"user"`
		TotalCost int64       `json:"total_cost"`
	}
	TopUpInitiation struct {
		Amount      int64  `json:"amount"`
		RedirectURL string `json:"redirect_url"`
	}
	UserProfile struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
)

type Category string

func (c Category) String() string {
	return string(c)
}

const (
	CategoryInstagram Category = "instagram"
	CategoryYoutube   Category = "youtube"
	CategoryTwitterX  Category = "twitterX"
	CategoryFacebook  Category = "facebook"
	CategoryTiktok    Category = "tiktok"
	CategoryTelegram  Category = "telegram"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryInstagram, CategoryYoutube, CategoryTwitterX,
		CategoryFacebook, CategoryTiktok, CategoryTelegram:
		return true
	}
	return false
}

// OrderStatus is mutated only by administrative action on the backend; the
// gateway treats it as opaque lifecycle state.
type OrderStatus string

func (s OrderStatus) String() string {
	return string(s)
}

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCanceled   OrderStatus = "canceled"
	StatusFailed     OrderStatus = "failed"
	StatusRefunded   OrderStatus = "refunded"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted,
		StatusCanceled, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)
