package domain

import "github.com/shopspring/decimal"

const (
	ProductActive   = "active"
	ProductDraft    = "draft"
	ProductArchived = "archived"
)

type Product struct {
	ID             string  `db:"id"`
	Title          string  `db:"title"`
	Description    string  `db:"description"`
	Vendor         string  `db:"vendor"`
	ProductType    string  `db:"product_type"`
	TagsJSON       string  `db:"tags_json"`
	Status         string  `db:"status"`
	Handle         string  `db:"handle"`
	PublishedAt    *string `db:"published_at"`
	SeoTitle       *string `db:"seo_title"`
	SeoDescription *string `db:"seo_description"`
	CreatedAt      string  `db:"created_at"`
	UpdatedAt      string  `db:"updated_at"`

	Tags     []string         `db:"-"`
	Variants []ProductVariant `db:"-"`
	Images   []ProductImage   `db:"-"`
	Options  []ProductOption  `db:"-"`
}

type ProductVariant struct {
	ID                string              `db:"id"`
	ProductID         string              `db:"product_id"`
	Title             string              `db:"title"`
	Sku               string              `db:"sku"`
	Price             decimal.Decimal     `db:"price"`
	CompareAtPrice    decimal.NullDecimal `db:"compare_at_price"`
	InventoryQuantity int                 `db:"inventory_quantity"`
	Weight            decimal.NullDecimal `db:"weight"`
	WeightUnit        *string             `db:"weight_unit"`
	Option1           *string             `db:"option1"`
	Option2           *string             `db:"option2"`
	Option3           *string             `db:"option3"`
	ImageURL          *string             `db:"image_url"`
}

func (v *ProductVariant) IsAvailable() bool { return v.InventoryQuantity > 0 }

type ProductImage struct {
	ID        string  `db:"id"`
	ProductID string  `db:"product_id"`
	URL       string  `db:"url"`
	AltText   *string `db:"alt_text"`
	Position  int     `db:"position"`
	Width     int     `db:"width"`
	Height    int     `db:"height"`
}

type ProductOption struct {
	ID         string   `db:"id"`
	ProductID  string   `db:"product_id"`
	Name       string   `db:"name"`
	Position   int      `db:"position"`
	ValuesJSON string   `db:"values_json"`
	Values     []string `db:"-"`
}

// MainImage is position 1, falling back to the first image.
func (p *Product) MainImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].Position == 1 {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

func (p *Product) IsAvailable() bool {
	for i := range p.Variants {
		if p.Variants[i].IsAvailable() {
			return true
		}
	}
	return false
}

func (p *Product) MinPrice() decimal.Decimal {
	if len(p.Variants) == 0 {
		return decimal.Zero
	}
	min := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price.LessThan(min) {
			min = v.Price
		}
	}
	return min
}

func (p *Product) MaxPrice() decimal.Decimal {
	if len(p.Variants) == 0 {
		return decimal.Zero
	}
	max := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price.GreaterThan(max) {
			max = v.Price
		}
	}
	return max
}

func (p *Product) TotalInventory() int {
	total := 0
	for i := range p.Variants {
		total += p.Variants[i].InventoryQuantity
	}
	return total
}

func (p *Product) Variant(sku string) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].Sku == sku {
			return &p.Variants[i]
		}
	}
	return nil
}
