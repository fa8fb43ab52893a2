package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "wholesale/internal/log"
	"wholesale/internal/services"
	"wholesale/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a decimal number", key)
	}
	return &d, nil
}

func queryBoolPtr(c *fiber.Ctx, key string) *bool {
	if c.Query(key) == "" {
		return nil
	}
	b := c.QueryBool(key)
	return &b
}

func queryTags(c *fiber.Ctx) []string {
	raw := c.Query("tags")
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func productSearchRequest(c *fiber.Ctx) (services.ProductSearchRequest, error) {
	minPrice, err := queryDecimal(c, "minPrice")
	if err != nil {
		return services.ProductSearchRequest{}, err
	}
	maxPrice, err := queryDecimal(c, "maxPrice")
	if err != nil {
		return services.ProductSearchRequest{}, err
	}
	return services.ProductSearchRequest{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Vendor:   c.Query("vendor"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		InStock:  queryBoolPtr(c, "inStock"),
		Status:   c.Query("status"),
		Tags:     queryTags(c),
		SortBy:   c.Query("sortBy"),
		SortDesc: c.QueryBool("sortDesc"),
		Page:     c.QueryInt("page"),
		PageSize: c.QueryInt("pageSize"),
	}, nil
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	req, err := productSearchRequest(c)
	if err != nil {
		return problem(c, fiber.StatusBadRequest, "Bad Request", err.Error())
	}
	res, err := h.Products.Search(req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *ProductHandler) Count(c *fiber.Ctx) error {
	req, err := productSearchRequest(c)
	if err != nil {
		return problem(c, fiber.StatusBadRequest, "Bad Request", err.Error())
	}
	n, err := h.Products.Count(&req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return problem(c, fiber.StatusNotFound, "Not Found", "product not found")
	}
	p, err := h.Products.Get(id, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) GetByHandle(c *fiber.Ctx) error {
	p, err := h.Products.GetByHandle(c.Params("handle"), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	products, err := h.Products.ByCategory(c.Params("category"),
		c.QueryInt("page"), c.QueryInt("pageSize"), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) ByVendor(c *fiber.Ctx) error {
	products, err := h.Products.ByVendor(c.Params("vendor"),
		c.QueryInt("page"), c.QueryInt("pageSize"), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	products, err := h.Products.Featured(c.QueryInt("limit"), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Related(c *fiber.Ctx) error {
	products, err := h.Products.Related(c.Params("id"), c.QueryInt("limit"), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req services.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	p, err := h.Products.Create(req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"id": p.ID, "handle": p.Handle})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req services.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	p, err := h.Products.Update(c.Params("id"), req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.update", map[string]any{"id": p.ID})
	return c.JSON(p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Products.Delete(id, currentUser(c)); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateInventory applies a signed delta to one variant's stock and returns
// the resulting quantity.
func (h *ProductHandler) UpdateInventory(c *fiber.Ctx) error {
	var req struct {
		Sku      string `json:"sku"`
		Quantity int    `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	qty, err := h.Products.UpdateInventory(id, req.Sku, req.Quantity, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.inventory.update", map[string]any{
		"id": id, "sku": req.Sku, "delta": req.Quantity, "quantity": qty,
	})
	return c.JSON(fiber.Map{"productId": id, "sku": req.Sku, "quantity": qty})
}
