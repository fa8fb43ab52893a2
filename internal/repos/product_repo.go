package repos

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"wholesale/internal/domain"
)

const productCols = `id, title, description, vendor, product_type, tags_json, status, handle,
	published_at, seo_title, seo_description, created_at, updated_at`

var productSortCols = map[string]string{
	"title":     "LOWER(title)",
	"price":     "(SELECT MIN(v.price) FROM product_variants v WHERE v.product_id = products.id)",
	"createdat": "created_at",
	"updatedat": "updated_at",
}

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Get(id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) ByHandle(handle string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE handle = ?`), handle)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) ExistsByHandle(handle string) (bool, error) {
	var n int
	err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM products WHERE handle = ?`), handle)
	return n > 0, err
}

// Create inserts the product with its variants, images and options in one tx.
func (r *ProductRepo) Create(p *domain.Product) error {
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	p.TagsJSON = marshalStrings(p.Tags)

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(r.db.Rebind(`
		INSERT INTO products(id, title, description, vendor, product_type, tags_json, status, handle,
		  published_at, seo_title, seo_description, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), p.ID, p.Title, p.Description, p.Vendor, p.ProductType, p.TagsJSON, p.Status, p.Handle,
		p.PublishedAt, p.SeoTitle, p.SeoDescription, p.CreatedAt, p.UpdatedAt); err != nil {
		return err
	}

	if err := r.insertChildren(tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ProductRepo) insertChildren(tx *sqlx.Tx, p *domain.Product) error {
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		v.ProductID = p.ID
		if _, err := tx.Exec(r.db.Rebind(`
			INSERT INTO product_variants(id, product_id, title, sku, price, compare_at_price,
			  inventory_quantity, weight, weight_unit, option1, option2, option3, image_url)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`), v.ID, v.ProductID, v.Title, v.Sku, v.Price, v.CompareAtPrice,
			v.InventoryQuantity, v.Weight, v.WeightUnit, v.Option1, v.Option2, v.Option3, v.ImageURL); err != nil {
			return err
		}
	}
	for i := range p.Images {
		img := &p.Images[i]
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		img.ProductID = p.ID
		if _, err := tx.Exec(r.db.Rebind(`
			INSERT INTO product_images(id, product_id, url, alt_text, position, width, height)
			VALUES(?, ?, ?, ?, ?, ?, ?)
		`), img.ID, img.ProductID, img.URL, img.AltText, img.Position, img.Width, img.Height); err != nil {
			return err
		}
	}
	for i := range p.Options {
		o := &p.Options[i]
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		o.ProductID = p.ID
		o.ValuesJSON = marshalStrings(o.Values)
		if _, err := tx.Exec(r.db.Rebind(`
			INSERT INTO product_options(id, product_id, name, position, values_json)
			VALUES(?, ?, ?, ?, ?)
		`), o.ID, o.ProductID, o.Name, o.Position, o.ValuesJSON); err != nil {
			return err
		}
	}
	return nil
}

// Update persists top-level product fields. Children are managed inline on
// create; inventory has its own path.
func (r *ProductRepo) Update(p *domain.Product) error {
	p.UpdatedAt = now()
	p.TagsJSON = marshalStrings(p.Tags)
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE products
		SET title = ?, description = ?, vendor = ?, product_type = ?, tags_json = ?, status = ?,
		  published_at = ?, seo_title = ?, seo_description = ?, updated_at = ?
		WHERE id = ?
	`), p.Title, p.Description, p.Vendor, p.ProductType, p.TagsJSON, p.Status,
		p.PublishedAt, p.SeoTitle, p.SeoDescription, p.UpdatedAt, p.ID)
	return err
}

// Delete removes the product; variants, images and options cascade.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	return err
}

func (r *ProductRepo) productFilter(c *ProductSearchCriteria) (string, []any) {
	where := []string{"1=1"}
	args := []any{}
	if c.Search != "" {
		s := "%" + strings.ToLower(c.Search) + "%"
		where = append(where, `(LOWER(title) LIKE ? OR LOWER(description) LIKE ?
			OR LOWER(vendor) LIKE ? OR LOWER(product_type) LIKE ? OR LOWER(tags_json) LIKE ?)`)
		args = append(args, s, s, s, s, s)
	}
	if c.Category != "" {
		where = append(where, `LOWER(product_type) = LOWER(?)`)
		args = append(args, c.Category)
	}
	if c.Vendor != "" {
		where = append(where, `LOWER(vendor) = LOWER(?)`)
		args = append(args, c.Vendor)
	}
	if c.MinPrice != nil {
		where = append(where, `EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.price >= ?)`)
		args = append(args, *c.MinPrice)
	}
	if c.MaxPrice != nil {
		where = append(where, `EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.price <= ?)`)
		args = append(args, *c.MaxPrice)
	}
	if c.InStock != nil {
		sub := `EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.inventory_quantity > 0)`
		if !*c.InStock {
			sub = "NOT " + sub
		}
		where = append(where, sub)
	}
	if c.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, c.Status)
	}
	if len(c.Tags) > 0 {
		// tags_json is a JSON array; match any requested tag as a quoted element.
		tagOr := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			tagOr = append(tagOr, `tags_json LIKE ?`)
			args = append(args, `%"`+t+`"%`)
		}
		where = append(where, "("+strings.Join(tagOr, " OR ")+")")
	}
	return strings.Join(where, " AND "), args
}

// Search returns one page plus the total matching count.
func (r *ProductRepo) Search(c *ProductSearchCriteria, page, pageSize int) ([]domain.Product, int, error) {
	where, args := r.productFilter(c)

	var total int
	if err := r.db.Get(&total, r.db.Rebind(`SELECT COUNT(*) FROM products WHERE `+where), args...); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + productCols + ` FROM products WHERE ` + where +
		` ORDER BY ` + orderClause(strings.ToLower(c.SortBy), c.SortDesc, productSortCols) +
		` LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	var out []domain.Product
	if err := r.db.Select(&out, r.db.Rebind(q), args...); err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.loadChildren(&out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *ProductRepo) Count(c *ProductSearchCriteria) (int, error) {
	if c == nil {
		c = &ProductSearchCriteria{}
	}
	where, args := r.productFilter(c)
	var n int
	err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM products WHERE `+where), args...)
	return n, err
}

// ByCategory lists products of one type; status narrows to that status when
// non-empty, so public pages stay densely packed with visible products.
func (r *ProductRepo) ByCategory(category, status string, page, pageSize int) ([]domain.Product, error) {
	where, args := `LOWER(product_type) = LOWER(?)`, []any{category}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	return r.listWhere(where, args, page, pageSize)
}

func (r *ProductRepo) ByVendor(vendor, status string, page, pageSize int) ([]domain.Product, error) {
	where, args := `LOWER(vendor) = LOWER(?)`, []any{vendor}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	return r.listWhere(where, args, page, pageSize)
}

// Featured is the most recent active products; there is no featured flag yet.
func (r *ProductRepo) Featured(limit int) ([]domain.Product, error) {
	return r.listWhere(`status = ?`, []any{domain.ProductActive}, 1, limit)
}

// Related returns active products sharing the product's type or vendor.
func (r *ProductRepo) Related(productID string, limit int) ([]domain.Product, error) {
	p, err := r.Get(productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return r.listWhere(
		`id != ? AND status = ? AND (LOWER(product_type) = LOWER(?) OR LOWER(vendor) = LOWER(?))`,
		[]any{productID, domain.ProductActive, p.ProductType, p.Vendor}, 1, limit)
}

func (r *ProductRepo) listWhere(where string, args []any, page, pageSize int) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	var out []domain.Product
	if err := r.db.Select(&out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadChildren(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AdjustInventory adds delta to the variant's quantity, floored at zero, in a
// single statement so concurrent adjustments cannot interleave a stale read.
func (r *ProductRepo) AdjustInventory(productID, sku string, delta int) error {
	res, err := r.db.Exec(r.db.Rebind(`
		UPDATE product_variants
		SET inventory_quantity = CASE WHEN inventory_quantity + ? < 0 THEN 0 ELSE inventory_quantity + ? END
		WHERE product_id = ? AND sku = ?
	`), delta, delta, productID, sku)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DecrementInventory subtracts qty only if enough stock exists.
func (r *ProductRepo) DecrementInventory(variantID string, qty int) (bool, error) {
	res, err := r.db.Exec(r.db.Rebind(`
		UPDATE product_variants
		SET inventory_quantity = inventory_quantity - ?
		WHERE id = ? AND inventory_quantity >= ?
	`), qty, variantID, qty)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RestockInventory returns qty units to a variant, used when order placement
// fails partway through.
func (r *ProductRepo) RestockInventory(variantID string, qty int) error {
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE product_variants
		SET inventory_quantity = inventory_quantity + ?
		WHERE id = ?
	`), qty, variantID)
	return err
}

func (r *ProductRepo) InventoryQty(productID, sku string) (int, error) {
	var qty int
	err := r.db.Get(&qty, r.db.Rebind(`
		SELECT inventory_quantity FROM product_variants WHERE product_id = ? AND sku = ?
	`), productID, sku)
	return qty, err
}

func (r *ProductRepo) loadChildren(p *domain.Product) error {
	p.Tags = unmarshalStrings(p.TagsJSON)

	if err := r.db.Select(&p.Variants, r.db.Rebind(`
		SELECT id, product_id, title, sku, price, compare_at_price, inventory_quantity,
		  weight, weight_unit, option1, option2, option3, image_url
		FROM product_variants WHERE product_id = ? ORDER BY sku
	`), p.ID); err != nil {
		return err
	}
	if err := r.db.Select(&p.Images, r.db.Rebind(`
		SELECT id, product_id, url, alt_text, position, width, height
		FROM product_images WHERE product_id = ? ORDER BY position
	`), p.ID); err != nil {
		return err
	}
	if err := r.db.Select(&p.Options, r.db.Rebind(`
		SELECT id, product_id, name, position, values_json
		FROM product_options WHERE product_id = ? ORDER BY position
	`), p.ID); err != nil {
		return err
	}
	for i := range p.Options {
		p.Options[i].Values = unmarshalStrings(p.Options[i].ValuesJSON)
	}
	return nil
}

func marshalStrings(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

func unmarshalStrings(raw string) []string {
	out := []string{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	return out
}
