package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wholesale/internal/domain"
	"wholesale/internal/repos"
	"wholesale/internal/validate"
)

type ProductSearchRequest struct {
	Search   string
	Category string
	Vendor   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  *bool
	Status   string
	Tags     []string
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
}

type ProductSearchResponse struct {
	Products   []ProductDTO `json:"products"`
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
}

type VariantRequest struct {
	Title             string              `json:"title"`
	Sku               string              `json:"sku"`
	Price             decimal.Decimal     `json:"price"`
	CompareAtPrice    decimal.NullDecimal `json:"compareAtPrice"`
	InventoryQuantity int                 `json:"inventoryQuantity"`
	Weight            decimal.NullDecimal `json:"weight"`
	WeightUnit        *string             `json:"weightUnit"`
	Option1           *string             `json:"option1"`
	Option2           *string             `json:"option2"`
	Option3           *string             `json:"option3"`
	ImageURL          *string             `json:"imageUrl"`
}

type ImageRequest struct {
	URL      string  `json:"url"`
	AltText  *string `json:"altText"`
	Position int     `json:"position"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

type OptionRequest struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

type CreateProductRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Vendor         string           `json:"vendor"`
	ProductType    string           `json:"productType"`
	Tags           []string         `json:"tags"`
	Status         string           `json:"status"`
	Handle         string           `json:"handle"`
	SeoTitle       *string          `json:"seoTitle"`
	SeoDescription *string          `json:"seoDescription"`
	Variants       []VariantRequest `json:"variants"`
	Images         []ImageRequest   `json:"images"`
	Options        []OptionRequest  `json:"options"`
}

type UpdateProductRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Vendor         string   `json:"vendor"`
	ProductType    string   `json:"productType"`
	Tags           []string `json:"tags"`
	Status         string   `json:"status"`
	SeoTitle       *string  `json:"seoTitle"`
	SeoDescription *string  `json:"seoDescription"`
}

type ProductService struct {
	Products *repos.ProductRepo
}

func NewProductService(products *repos.ProductRepo) *ProductService {
	return &ProductService{Products: products}
}

// visible hides non-active products from non-admins; to them the record does
// not exist.
func visible(p *domain.Product, current *domain.User) bool {
	if p.Status == domain.ProductActive {
		return true
	}
	return current != nil && current.IsAdmin()
}

func (s *ProductService) Get(id string, current *domain.User) (ProductDTO, error) {
	p, err := s.Products.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductDTO{}, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return ProductDTO{}, err
	}
	if !visible(p, current) {
		return ProductDTO{}, fmt.Errorf("%w: product not found", ErrNotFound)
	}
	return mapProduct(p), nil
}

func (s *ProductService) GetByHandle(handle string, current *domain.User) (ProductDTO, error) {
	p, err := s.Products.ByHandle(handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductDTO{}, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return ProductDTO{}, err
	}
	if !visible(p, current) {
		return ProductDTO{}, fmt.Errorf("%w: product not found", ErrNotFound)
	}
	return mapProduct(p), nil
}

func (s *ProductService) Search(req ProductSearchRequest, current *domain.User) (*ProductSearchResponse, error) {
	page := validate.Page(req.Page)
	size := validate.PageSize(req.PageSize)

	criteria := &repos.ProductSearchCriteria{
		Search:   req.Search,
		Category: req.Category,
		Vendor:   req.Vendor,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		InStock:  req.InStock,
		Status:   req.Status,
		Tags:     req.Tags,
		SortBy:   req.SortBy,
		SortDesc: req.SortDesc,
	}
	// Non-admins only ever see active products, whatever they asked for.
	if current == nil || !current.IsAdmin() {
		criteria.Status = domain.ProductActive
	}

	products, total, err := s.Products.Search(criteria, page, size)
	if err != nil {
		return nil, err
	}
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, mapProduct(&products[i]))
	}
	return &ProductSearchResponse{
		Products:   out,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages(total, size),
	}, nil
}

func (s *ProductService) Count(req *ProductSearchRequest, current *domain.User) (int, error) {
	criteria := &repos.ProductSearchCriteria{}
	if req != nil {
		criteria = &repos.ProductSearchCriteria{
			Search:   req.Search,
			Category: req.Category,
			Vendor:   req.Vendor,
			MinPrice: req.MinPrice,
			MaxPrice: req.MaxPrice,
			InStock:  req.InStock,
			Status:   req.Status,
			Tags:     req.Tags,
		}
	}
	if current == nil || !current.IsAdmin() {
		criteria.Status = domain.ProductActive
	}
	return s.Products.Count(criteria)
}

func (s *ProductService) filterVisible(products []domain.Product, current *domain.User) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		if visible(&products[i], current) {
			out = append(out, mapProduct(&products[i]))
		}
	}
	return out
}

// statusFor narrows list queries to active products for non-admins so drafts
// never occupy page slots.
func statusFor(current *domain.User) string {
	if current != nil && current.IsAdmin() {
		return ""
	}
	return domain.ProductActive
}

func (s *ProductService) ByCategory(category string, page, pageSize int, current *domain.User) ([]ProductDTO, error) {
	products, err := s.Products.ByCategory(category, statusFor(current), validate.Page(page), validate.PageSize(pageSize))
	if err != nil {
		return nil, err
	}
	return s.filterVisible(products, current), nil
}

func (s *ProductService) ByVendor(vendor string, page, pageSize int, current *domain.User) ([]ProductDTO, error) {
	products, err := s.Products.ByVendor(vendor, statusFor(current), validate.Page(page), validate.PageSize(pageSize))
	if err != nil {
		return nil, err
	}
	return s.filterVisible(products, current), nil
}

func (s *ProductService) Featured(limit int, current *domain.User) ([]ProductDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	products, err := s.Products.Featured(limit)
	if err != nil {
		return nil, err
	}
	return s.filterVisible(products, current), nil
}

func (s *ProductService) Related(productID string, limit int, current *domain.User) ([]ProductDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	products, err := s.Products.Related(productID, limit)
	if err != nil {
		return nil, err
	}
	return s.filterVisible(products, current), nil
}

func (s *ProductService) Create(req CreateProductRequest, current *domain.User) (ProductDTO, error) {
	if current == nil || !current.IsAdmin() {
		return ProductDTO{}, fmt.Errorf("%w: only admins can create products", ErrForbidden)
	}
	if req.Title == "" || req.Vendor == "" || req.ProductType == "" {
		return ProductDTO{}, fmt.Errorf("%w: title, vendor and productType are required", ErrInvalid)
	}
	handle, ok := validate.Handle(req.Handle)
	if !ok {
		return ProductDTO{}, fmt.Errorf("%w: handle must be a lowercase slug like %q", ErrInvalid, "acme-drill")
	}
	status := req.Status
	if status == "" {
		status = domain.ProductDraft
	}
	if !validate.ProductStatus(status) {
		return ProductDTO{}, fmt.Errorf("%w: invalid status", ErrInvalid)
	}
	for _, v := range req.Variants {
		if _, ok := validate.SKU(v.Sku); !ok {
			return ProductDTO{}, fmt.Errorf("%w: invalid sku %q", ErrInvalid, v.Sku)
		}
		if v.Price.IsNegative() {
			return ProductDTO{}, fmt.Errorf("%w: variant price cannot be negative", ErrInvalid)
		}
		if v.InventoryQuantity < 0 {
			return ProductDTO{}, fmt.Errorf("%w: inventory quantity cannot be negative", ErrInvalid)
		}
	}

	exists, err := s.Products.ExistsByHandle(handle)
	if err != nil {
		return ProductDTO{}, err
	}
	if exists {
		return ProductDTO{}, fmt.Errorf("%w: product with handle %q already exists", ErrConflict, handle)
	}

	p := &domain.Product{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Vendor:         req.Vendor,
		ProductType:    req.ProductType,
		Tags:           req.Tags,
		Status:         status,
		Handle:         handle,
		SeoTitle:       req.SeoTitle,
		SeoDescription: req.SeoDescription,
	}
	if status == domain.ProductActive {
		ts := time.Now().UTC().Format(time.RFC3339)
		p.PublishedAt = &ts
	}
	for _, v := range req.Variants {
		p.Variants = append(p.Variants, domain.ProductVariant{
			Title:             v.Title,
			Sku:               v.Sku,
			Price:             v.Price,
			CompareAtPrice:    v.CompareAtPrice,
			InventoryQuantity: v.InventoryQuantity,
			Weight:            v.Weight,
			WeightUnit:        v.WeightUnit,
			Option1:           v.Option1,
			Option2:           v.Option2,
			Option3:           v.Option3,
			ImageURL:          v.ImageURL,
		})
	}
	for _, img := range req.Images {
		p.Images = append(p.Images, domain.ProductImage{
			URL:      img.URL,
			AltText:  img.AltText,
			Position: img.Position,
			Width:    img.Width,
			Height:   img.Height,
		})
	}
	for _, o := range req.Options {
		p.Options = append(p.Options, domain.ProductOption{
			Name:     o.Name,
			Position: o.Position,
			Values:   o.Values,
		})
	}

	if err := s.Products.Create(p); err != nil {
		return ProductDTO{}, err
	}
	return mapProduct(p), nil
}

// Update applies partial changes; empty fields keep their value.
func (s *ProductService) Update(id string, req UpdateProductRequest, current *domain.User) (ProductDTO, error) {
	if current == nil || !current.IsAdmin() {
		return ProductDTO{}, fmt.Errorf("%w: only admins can update products", ErrForbidden)
	}
	p, err := s.Products.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductDTO{}, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return ProductDTO{}, err
	}

	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Vendor != "" {
		p.Vendor = req.Vendor
	}
	if req.ProductType != "" {
		p.ProductType = req.ProductType
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	if req.Status != "" {
		if !validate.ProductStatus(req.Status) {
			return ProductDTO{}, fmt.Errorf("%w: invalid status", ErrInvalid)
		}
		if req.Status == domain.ProductActive && p.PublishedAt == nil {
			ts := time.Now().UTC().Format(time.RFC3339)
			p.PublishedAt = &ts
		}
		p.Status = req.Status
	}
	if req.SeoTitle != nil {
		p.SeoTitle = req.SeoTitle
	}
	if req.SeoDescription != nil {
		p.SeoDescription = req.SeoDescription
	}

	if err := s.Products.Update(p); err != nil {
		return ProductDTO{}, err
	}
	return mapProduct(p), nil
}

func (s *ProductService) Delete(id string, current *domain.User) error {
	if current == nil || !current.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete products", ErrForbidden)
	}
	if _, err := s.Products.Get(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return err
	}
	return s.Products.Delete(id)
}

// UpdateInventory adds delta to the variant's quantity; the result is floored
// at zero no matter how large a negative delta is.
func (s *ProductService) UpdateInventory(productID, sku string, delta int, current *domain.User) (int, error) {
	if current == nil || !current.IsAdmin() {
		return 0, fmt.Errorf("%w: only admins can update inventory", ErrForbidden)
	}
	if _, ok := validate.SKU(sku); !ok {
		return 0, fmt.Errorf("%w: invalid sku", ErrInvalid)
	}
	if err := s.Products.AdjustInventory(productID, sku, delta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: product variant not found", ErrNotFound)
		}
		return 0, err
	}
	return s.Products.InventoryQty(productID, sku)
}
