package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "wholesale/internal/log"
	"wholesale/internal/services"
	"wholesale/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

func orderSearchRequest(c *fiber.Ctx) (services.OrderSearchRequest, error) {
	minTotal, err := queryDecimal(c, "minTotal")
	if err != nil {
		return services.OrderSearchRequest{}, err
	}
	maxTotal, err := queryDecimal(c, "maxTotal")
	if err != nil {
		return services.OrderSearchRequest{}, err
	}
	return services.OrderSearchRequest{
		Search:        c.Query("search"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		UserID:        c.Query("userId"),
		MinTotal:      minTotal,
		MaxTotal:      maxTotal,
		CreatedFrom:   c.Query("createdFrom"),
		CreatedTo:     c.Query("createdTo"),
		SortBy:        c.Query("sortBy"),
		SortDesc:      c.QueryBool("sortDesc"),
		Page:          c.QueryInt("page"),
		PageSize:      c.QueryInt("pageSize"),
	}, nil
}

func (h *OrderHandler) Search(c *fiber.Ctx) error {
	req, err := orderSearchRequest(c)
	if err != nil {
		return problem(c, fiber.StatusBadRequest, "Bad Request", err.Error())
	}
	res, err := h.Orders.Search(req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *OrderHandler) Count(c *fiber.Ctx) error {
	req, err := orderSearchRequest(c)
	if err != nil {
		return problem(c, fiber.StatusBadRequest, "Bad Request", err.Error())
	}
	n, err := h.Orders.Count(&req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *OrderHandler) Revenue(c *fiber.Ctx) error {
	total, err := h.Orders.Revenue(currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"totalRevenue": total})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "order"})
		return problem(c, fiber.StatusNotFound, "Not Found", "order not found")
	}
	o, err := h.Orders.Get(id, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) GetByNumber(c *fiber.Ctx) error {
	o, err := h.Orders.GetByNumber(c.Params("number"), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	o, err := h.Orders.Create(req, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.create", map[string]any{"number": o.OrderNumber, "total": o.TotalAmount})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	o, err := h.Orders.Cancel(c.Params("id"), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.cancel", map[string]any{"number": o.OrderNumber})
	return c.JSON(o)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	o, err := h.Orders.UpdateStatus(c.Params("id"), req.Status, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.status.update", map[string]any{"number": o.OrderNumber, "status": o.Status})
	return c.JSON(o)
}

func (h *OrderHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	var req struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	o, err := h.Orders.UpdatePaymentStatus(c.Params("id"), req.PaymentStatus, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.payment.update", map[string]any{"number": o.OrderNumber})
	return c.JSON(o)
}

func (h *OrderHandler) UpdateTracking(c *fiber.Ctx) error {
	var req struct {
		TrackingNumber string `json:"trackingNumber"`
		TrackingURL    string `json:"trackingUrl"`
		ShippingMethod string `json:"shippingMethod"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	o, err := h.Orders.UpdateTracking(c.Params("id"), req.TrackingNumber, req.TrackingURL, req.ShippingMethod, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.tracking.update", map[string]any{"number": o.OrderNumber})
	return c.JSON(o)
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Orders.Delete(id, currentUser(c)); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
