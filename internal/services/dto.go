package services

import (
	"github.com/shopspring/decimal"

	"wholesale/internal/domain"
)

// DTOs are the shapes exposed over the API; entities never leave the service
// layer. Computed fields are materialized at mapping time.

type UserDTO struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	FullName    string  `json:"fullName"`
	Role        string  `json:"role"`
	Status      string  `json:"status"`
	IsAdmin     bool    `json:"isAdmin"`
	IsActive    bool    `json:"isActive"`
	LastLoginAt *string `json:"lastLoginAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func mapUser(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Role:        u.Role,
		Status:      u.Status,
		IsAdmin:     u.IsAdmin(),
		IsActive:    u.IsActive(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type VariantDTO struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	Sku               string               `json:"sku"`
	Price             decimal.Decimal      `json:"price"`
	CompareAtPrice    *decimal.Decimal     `json:"compareAtPrice,omitempty"`
	InventoryQuantity int                  `json:"inventoryQuantity"`
	Weight            *decimal.Decimal     `json:"weight,omitempty"`
	WeightUnit        *string              `json:"weightUnit,omitempty"`
	Option1           *string              `json:"option1,omitempty"`
	Option2           *string              `json:"option2,omitempty"`
	Option3           *string              `json:"option3,omitempty"`
	ImageURL          *string              `json:"imageUrl,omitempty"`
	IsAvailable       bool                 `json:"isAvailable"`
}

type ImageDTO struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	AltText  *string `json:"altText,omitempty"`
	Position int     `json:"position"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

type OptionDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

type ProductDTO struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Vendor         string          `json:"vendor"`
	ProductType    string          `json:"productType"`
	Tags           []string        `json:"tags"`
	Variants       []VariantDTO    `json:"variants"`
	Images         []ImageDTO      `json:"images"`
	Options        []OptionDTO     `json:"options"`
	Status         string          `json:"status"`
	Handle         string          `json:"handle"`
	PublishedAt    *string         `json:"publishedAt,omitempty"`
	SeoTitle       *string         `json:"seoTitle,omitempty"`
	SeoDescription *string         `json:"seoDescription,omitempty"`
	MainImage      *ImageDTO       `json:"mainImage,omitempty"`
	MinPrice       decimal.Decimal `json:"minPrice"`
	MaxPrice       decimal.Decimal `json:"maxPrice"`
	TotalInventory int             `json:"totalInventory"`
	IsAvailable    bool            `json:"isAvailable"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

func mapProduct(p *domain.Product) ProductDTO {
	dto := ProductDTO{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Vendor:         p.Vendor,
		ProductType:    p.ProductType,
		Tags:           p.Tags,
		Status:         p.Status,
		Handle:         p.Handle,
		PublishedAt:    p.PublishedAt,
		SeoTitle:       p.SeoTitle,
		SeoDescription: p.SeoDescription,
		MinPrice:       p.MinPrice(),
		MaxPrice:       p.MaxPrice(),
		TotalInventory: p.TotalInventory(),
		IsAvailable:    p.IsAvailable(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Variants:       make([]VariantDTO, 0, len(p.Variants)),
		Images:         make([]ImageDTO, 0, len(p.Images)),
		Options:        make([]OptionDTO, 0, len(p.Options)),
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		vd := VariantDTO{
			ID:                v.ID,
			Title:             v.Title,
			Sku:               v.Sku,
			Price:             v.Price,
			InventoryQuantity: v.InventoryQuantity,
			WeightUnit:        v.WeightUnit,
			Option1:           v.Option1,
			Option2:           v.Option2,
			Option3:           v.Option3,
			ImageURL:          v.ImageURL,
			IsAvailable:       v.IsAvailable(),
		}
		if v.CompareAtPrice.Valid {
			cap := v.CompareAtPrice.Decimal
			vd.CompareAtPrice = &cap
		}
		if v.Weight.Valid {
			w := v.Weight.Decimal
			vd.Weight = &w
		}
		dto.Variants = append(dto.Variants, vd)
	}
	for i := range p.Images {
		img := &p.Images[i]
		dto.Images = append(dto.Images, ImageDTO{
			ID: img.ID, URL: img.URL, AltText: img.AltText,
			Position: img.Position, Width: img.Width, Height: img.Height,
		})
	}
	for i := range p.Options {
		o := &p.Options[i]
		dto.Options = append(dto.Options, OptionDTO{
			ID: o.ID, Name: o.Name, Position: o.Position, Values: o.Values,
		})
	}
	if main := p.MainImage(); main != nil {
		dto.MainImage = &ImageDTO{
			ID: main.ID, URL: main.URL, AltText: main.AltText,
			Position: main.Position, Width: main.Width, Height: main.Height,
		}
	}
	return dto
}

type OrderItemDTO struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	VariantID    string          `json:"variantId"`
	ProductTitle string          `json:"productTitle"`
	Sku          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Option1      *string         `json:"option1,omitempty"`
	Option2      *string         `json:"option2,omitempty"`
	Option3      *string         `json:"option3,omitempty"`
}

type AddressDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type OrderDTO struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"orderNumber"`
	UserID         string          `json:"userId"`
	Status         string          `json:"status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	ShippingAmount decimal.Decimal `json:"shippingAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Currency       string          `json:"currency"`
	Shipping       AddressDTO      `json:"shippingAddress"`
	Billing        AddressDTO      `json:"billingAddress"`
	PaymentMethod  *string         `json:"paymentMethod,omitempty"`
	PaymentStatus  *string         `json:"paymentStatus,omitempty"`
	TransactionID  *string         `json:"transactionId,omitempty"`
	ShippingMethod *string         `json:"shippingMethod,omitempty"`
	TrackingNumber *string         `json:"trackingNumber,omitempty"`
	TrackingURL    *string         `json:"trackingUrl,omitempty"`
	ShippedAt      *string         `json:"shippedAt,omitempty"`
	DeliveredAt    *string         `json:"deliveredAt,omitempty"`
	CustomerNotes  *string         `json:"customerNotes,omitempty"`
	Items          []OrderItemDTO  `json:"items"`
	TotalItems     int             `json:"totalItems"`
	CanBeCancelled bool            `json:"canBeCancelled"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

func mapOrder(o *domain.Order) OrderDTO {
	dto := OrderDTO{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         o.Status,
		Subtotal:       o.Subtotal,
		TaxAmount:      o.TaxAmount,
		ShippingAmount: o.ShippingAmount,
		TotalAmount:    o.TotalAmount,
		Currency:       o.Currency,
		Shipping: AddressDTO{
			FirstName: o.ShippingFirstName, LastName: o.ShippingLastName,
			Address1: o.ShippingAddress1, Address2: deref(o.ShippingAddress2),
			City: o.ShippingCity, State: o.ShippingState, ZipCode: o.ShippingZipCode,
			Country: o.ShippingCountry, Phone: o.ShippingPhone,
		},
		Billing: AddressDTO{
			FirstName: o.BillingFirstName, LastName: o.BillingLastName,
			Address1: o.BillingAddress1, Address2: deref(o.BillingAddress2),
			City: o.BillingCity, State: o.BillingState, ZipCode: o.BillingZipCode,
			Country: o.BillingCountry, Phone: o.BillingPhone,
		},
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		TransactionID:  o.TransactionID,
		ShippingMethod: o.ShippingMethod,
		TrackingNumber: o.TrackingNumber,
		TrackingURL:    o.TrackingURL,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
		CustomerNotes:  o.CustomerNotes,
		TotalItems:     o.TotalItems(),
		CanBeCancelled: o.CanBeCancelled(),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]OrderItemDTO, 0, len(o.Items)),
	}
	for i := range o.Items {
		it := &o.Items[i]
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:           it.ID,
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			ProductTitle: it.ProductTitle,
			Sku:          it.Sku,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   it.TotalPrice,
			Option1:      it.Option1,
			Option2:      it.Option2,
			Option3:      it.Option3,
		})
	}
	return dto
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// totalPages is ceil(total / pageSize).
func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
