package controller

import (
	"net/http"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type bidRoutesHandler struct {
	bidService service.Bid
	validate   *validator.Validate
}

func newBidRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *bidRoutesHandler {
	h := &bidRoutesHandler{bidService: services.Bid, validate: v}
	outer.POST("/bids", h.PostBid)
	outer.POST("/bids/validate", h.ValidateBid)
	outer.GET("/bids/:bidId", h.GetBid)
	outer.GET("/bids/:bidId/status", h.GetBidStatus)
	outer.DELETE("/bids/:bidId", h.CancelBid)

	return h
}

type postBidInput struct {
	PooledOrderId string          `json:"pooledOrderId" validate:"required,uuid"`
	SupplierId    string          `json:"supplierId" validate:"required,uuid"`
	PricePerUnit  decimal.Decimal `json:"pricePerUnit"`
	Notes         *string         `json:"notes" validate:"omitempty,max=1000"`
}

func (i *postBidInput) toModel() *entity.CreateBidInput {
	return &entity.CreateBidInput{
		PooledOrderId: uuid.MustParse(i.PooledOrderId),
		SupplierId:    uuid.MustParse(i.SupplierId),
		PricePerUnit:  i.PricePerUnit,
		Notes:         i.Notes,
	}
}

// The supplier id comes from the request body until sessions exist; the
// service only trusts what it is given.
// /bids
func (h *bidRoutesHandler) PostBid(c echo.Context) error {
	var input postBidInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Input data is not formed correctly", err)
	}

	if err := h.validate.Struct(input); err != nil {
		return badRequest(c, getAllErrorMessages(err), err)
	}

	bid, err := h.bidService.SubmitBid(c.Request().Context(), input.toModel())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, mapBid(bid))
}

// Runs every submission check without storing the bid.
// /bids/validate
func (h *bidRoutesHandler) ValidateBid(c echo.Context) error {
	var input postBidInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Input data is not formed correctly", err)
	}

	if err := h.validate.Struct(input); err != nil {
		return badRequest(c, getAllErrorMessages(err), err)
	}

	validation, err := h.bidService.ValidateBid(c.Request().Context(), input.toModel())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapBidValidation(validation))
}

// /bids/:bidId
func (h *bidRoutesHandler) GetBid(c echo.Context) error {
	bidId, err := parseIdParam(c, "bidId")
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	bid, err := h.bidService.GetBidById(c.Request().Context(), bidId)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapBid(bid))
}

// /bids/:bidId/status
func (h *bidRoutesHandler) GetBidStatus(c echo.Context) error {
	bidId, err := parseIdParam(c, "bidId")
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	status, err := h.bidService.GetSupplierBidStatus(c.Request().Context(), bidId)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapBidStatus(status))
}

type cancelBidInput struct {
	SupplierId string `validate:"required,uuid"`
}

// /bids/:bidId?supplier_id=
func (h *bidRoutesHandler) CancelBid(c echo.Context) error {
	bidId, err := parseIdParam(c, "bidId")
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	input := cancelBidInput{SupplierId: c.QueryParam("supplier_id")}
	if err := h.validate.Struct(input); err != nil {
		return badRequest(c, getAllErrorMessages(err), err)
	}

	if err := h.bidService.CancelBid(c.Request().Context(), bidId, uuid.MustParse(input.SupplierId)); err != nil {
		return respondServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
