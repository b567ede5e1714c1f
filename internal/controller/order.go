package controller

import (
	"net/http"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

type orderRoutesHandler struct {
	orderService   service.Order
	auctionService service.Auction
	bidService     service.Bid
	validate       *validator.Validate
}

func newOrderRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *orderRoutesHandler {
	h := &orderRoutesHandler{
		orderService:   services.Order,
		auctionService: services.Auction,
		bidService:     services.Bid,
		validate:       v,
	}

	outer.GET("/pooled-orders", h.GetOrders)
	outer.POST("/pooled-orders", h.PostOrder)
	outer.GET("/pooled-orders/:orderId", h.GetOrder)
	outer.PATCH("/pooled-orders/:orderId/status", h.UpdateOrderStatus)
	outer.POST("/pooled-orders/:orderId/award", h.AwardOrder)
	outer.GET("/pooled-orders/:orderId/bids", h.GetOrderBids)

	return h
}

type getOrdersInput struct {
	Status string `validate:"omitempty,oneof=PREPARING AUCTION_OPEN AUCTION_CLOSED AWARDED COMPLETED CANCELLED"`
}

// /pooled-orders
func (h *orderRoutesHandler) GetOrders(c echo.Context) error {
	input := getOrdersInput{Status: c.QueryParam("status")}
	if err := h.validate.Struct(input); err != nil {
		return badRequest(c, getAllErrorMessages(err), err)
	}

	pg, err := parsePagination(c)
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	filter := &entity.OrderFilter{}
	if input.Status != "" {
		status := entity.OrderStatus(input.Status)
		filter.Status = &status
	}

	orders, err := h.orderService.GetOrders(c.Request().Context(), filter, pg)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapOrders(orders))
}

type postOrderInput struct {
	ProductId     string    `json:"productId" validate:"required,uuid"`
	AreaGroupId   string    `json:"areaGroupId" validate:"required,uuid"`
	AuctionEndsAt time.Time `json:"auctionEndsAt" validate:"required"`
}

// /pooled-orders
func (h *orderRoutesHandler) PostOrder(c echo.Context) error {
	var input postOrderInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Input data is not formed correctly", err)
	}

	if err := h.validate.Struct(input); err != nil {
		return badRequest(c, getAllErrorMessages(err), err)
	}

	model := &entity.CreateOrderInput{
		ProductId:     uuid.MustParse(input.ProductId),
		AreaGroupId:   uuid.MustParse(input.AreaGroupId),
		AuctionEndsAt: input.AuctionEndsAt,
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), model)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, mapOrder(order))
}

// /pooled-orders/:orderId
func (h *orderRoutesHandler) GetOrder(c echo.Context) error {
	orderId, err := parseIdParam(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	details, err := h.orderService.GetOrderById(c.Request().Context(), orderId)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapOrderDetails(details))
}

type updateOrderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=PREPARING AUCTION_OPEN AUCTION_CLOSED AWARDED COMPLETED CANCELLED"`
}

// /pooled-orders/:orderId/status
func (h *orderRoutesHandler) UpdateOrderStatus(c echo.Context) error {
	orderId, err := parseIdParam(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	var input updateOrderStatusInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Input data is not formed correctly", err)
	}

	if err := h.validate.Struct(input); err != nil {
		return badRequest(c, getAllErrorMessages(err), err)
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), orderId, entity.OrderStatus(input.Status))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapOrder(order))
}

// /pooled-orders/:orderId/award
func (h *orderRoutesHandler) AwardOrder(c echo.Context) error {
	orderId, err := parseIdParam(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	order, err := h.auctionService.AwardAuction(c.Request().Context(), orderId)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapOrder(order))
}

// /pooled-orders/:orderId/bids
func (h *orderRoutesHandler) GetOrderBids(c echo.Context) error {
	orderId, err := parseIdParam(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	pg, err := parsePagination(c)
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	bids, err := h.bidService.GetOrderBids(c.Request().Context(), orderId, pg)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapBids(bids))
}
