package controller

import (
	"net/http"

	"pooled-auction-api/internal/service"

	"github.com/labstack/echo"
)

type supplierRoutesHandler struct {
	bidService service.Bid
}

func newSupplierRoutesHandler(outer *echo.Group, services *service.Services) *supplierRoutesHandler {
	h := &supplierRoutesHandler{bidService: services.Bid}
	outer.GET("/suppliers/:supplierId/bids", h.GetSupplierBids)

	return h
}

// /suppliers/:supplierId/bids
func (h *supplierRoutesHandler) GetSupplierBids(c echo.Context) error {
	supplierId, err := parseIdParam(c, "supplierId")
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	pg, err := parsePagination(c)
	if err != nil {
		return badRequest(c, err.Error(), err)
	}

	bids, err := h.bidService.GetSupplierBids(c.Request().Context(), supplierId, pg)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, mapSupplierBids(bids))
}
