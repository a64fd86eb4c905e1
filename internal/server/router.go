package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/img-hub/img-hub/internal/cache"
	"github.com/img-hub/img-hub/internal/resolver"
)

// AppOptions controls the dependencies injected into the Fiber application.
type AppOptions struct {
	Logger   *logrus.Logger
	Resolver *resolver.Resolver
	Store    cache.Store
}

const contextKeyRequestID = "_imghub_request_id"

// NewApp builds a Fiber application exposing the 3-digit image routes plus
// the /-/ diagnostics surface, with recover and request-ID middlewares.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if opts.Store == nil {
		return nil, errors.New("cache store is required")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	h := &imageHandler{
		logger:   opts.Logger,
		resolver: opts.Resolver,
		store:    opts.Store,
	}

	app.Get("/:code", h.handleGet)
	app.Put("/:code", h.handlePut)
	app.Delete("/:code", h.handleDelete)
	app.All("/:code", h.handleMethodNotAllowed)

	return app, nil
}

// requestContextMiddleware 负责生成请求 ID 并写入响应头，供日志串联。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
