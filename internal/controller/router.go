package controller

import (
	"time"

	"pooled-auction-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/sirupsen/logrus"
)

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services, log logrus.FieldLogger) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	handler.Use(middleware.Recover())
	handler.Use(requestLogger(log))

	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newOrderRoutesHandler(api, services, validate)
	newBidRoutesHandler(api, services, validate)
	newSupplierRoutesHandler(api, services)
}

func requestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			entry := log.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Path(),
				"status":  c.Response().Status,
				"latency": time.Since(start).String(),
			})
			if err != nil {
				entry.WithError(err).Warn("request failed")
				return err
			}
			entry.Debug("request served")

			return nil
		}
	}
}
