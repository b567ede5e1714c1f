package controller

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

const (
	defaultLimit  = 5
	defaultOffset = 0
	maxLimit      = 50
)

var errInvalidPagination = errors.New("invalid pagination")

type errorResponse struct {
	Reason string `json:"reason"`
}

func getAllErrorMessages(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	var builder strings.Builder
	for _, fe := range validationErrors {
		message := fmt.Sprintf("'%s': %s\n", fe.Field(), getMessage(fe))
		builder.WriteString(message)
	}

	return builder.String()
}

func getMessage(fe validator.FieldError) string {
	s := ""
	if fe.Type() == reflect.TypeOf(s) || fe.Type() == reflect.TypeOf(&s) {
		return getMessageForString(fe)
	}

	if fe.Type() == reflect.TypeOf(0) {
		return getMessageForInt(fe)
	}

	if fe.Tag() == "required" {
		return "this field is required"
	}

	return "incorrect value passed"
}

func getMessageForInt(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "should be less or equal than " + fe.Param()
	case "gte", "min":
		return "should be greater or equal than " + fe.Param()
	}

	return "incorrect value passed"
}

func getMessageForString(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "length should be less or equal than " + fe.Param()
	case "gte", "min":
		return "length should be greater or equal than " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	case "uuid":
		return "should be a valid uuid"
	}

	return "incorrect value passed"
}

func badRequest(c echo.Context, reason string, err error) error {
	if e := c.JSON(http.StatusBadRequest, errorResponse{reason}); e != nil {
		return e
	}

	return err
}

// respondServiceError writes the response for a service error and returns the
// error so it reaches the request log.
func respondServiceError(c echo.Context, err error) error {
	code, reason := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidPrice), errors.Is(err, service.ErrInvalidDecrement):
		code, reason = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		code, reason = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrSupplierNotVerified), errors.Is(err, service.ErrUserHasNoAccessToBid):
		code, reason = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrAuctionNotAcceptingBids),
		errors.Is(err, service.ErrDecrementTooSmall),
		errors.Is(err, service.ErrBidNotLower),
		errors.Is(err, service.ErrAuctionStillActive),
		errors.Is(err, service.ErrInvalidTransition):
		code, reason = http.StatusConflict, err.Error()
	}

	if e := c.JSON(code, errorResponse{reason}); e != nil {
		return e
	}

	return err
}

func parseIdParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("'%s': should be a valid uuid", name)
	}

	return id, nil
}

func parsePagination(c echo.Context) (*entity.PaginationInput, error) {
	limit, offset := defaultLimit, defaultOffset

	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > maxLimit {
			return nil, fmt.Errorf("%w: 'limit' should be between 0 and %d", errInvalidPagination, maxLimit)
		}
		limit = v
	}

	if raw := c.QueryParam("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: 'offset' should be greater or equal than 0", errInvalidPagination)
		}
		offset = v
	}

	return entity.NewPaginationInput(limit, offset), nil
}
