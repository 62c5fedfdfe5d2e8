package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	handlers "github.com/rentora/gatekeeper/pkg/handlers/http"
	"github.com/rentora/gatekeeper/pkg/middleware"
)

var ErrMissingHandler = errors.New("gateway router: missing handler")

type gatewayRouter struct {
	middlewareTransport middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewGatewayRouter(
	middlewareTransport middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &gatewayRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *gatewayRouter) BuildRoutes(router *fiber.App) error {
	if r.handlerTransport.GetVersionHandler == nil ||
		r.handlerTransport.ListPoliciesHandler == nil ||
		r.handlerTransport.InvalidateCacheHandler == nil ||
		r.handlerTransport.ListLocationsHandler == nil {
		return ErrMissingHandler
	}

	router.Use(
		r.middlewareTransport.PanicRecoverMiddleware.Middleware(),
		r.middlewareTransport.RequestIDMiddleware.Middleware(),
		r.middlewareTransport.MetricsMiddleware.Middleware(),
	)

	router.Get("/version", r.handlerTransport.GetVersionHandler.Handle)

	// every route under the API prefix goes through admission control
	api := router.Group("/api", r.middlewareTransport.RateLimitMiddleware.Middleware())

	v1 := api.Group("/v1")
	{
		v1.Get("/locations", r.handlerTransport.ListLocationsHandler.Handle)
		v1.Get("/policies", r.handlerTransport.ListPoliciesHandler.Handle)
		v1.Post("/cache/invalidate", r.handlerTransport.InvalidateCacheHandler.Handle)
	}

	return nil
}
