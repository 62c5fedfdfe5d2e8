package server

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rentora/gatekeeper/pkg/config"
	handlers "github.com/rentora/gatekeeper/pkg/handlers/http"
	infraPrometheus "github.com/rentora/gatekeeper/pkg/infra/prometheus"
	"github.com/rentora/gatekeeper/pkg/middleware"
	"github.com/rentora/gatekeeper/pkg/server/router"
)

type (
	GatewayServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
	}
	GatewayServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewGatewayServer(di GatewayServerDI) *GatewayServer {
	if di.Config.Metrics.Enabled {
		infraPrometheus.Initialize()
	}

	s := &GatewayServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}

	s.BaseServer.setupMetricsEndpoint()
	return s
}

func (s *GatewayServer) Run() error {
	s.setupHealthCheck()
	s.WithRouters(router.NewGatewayRouter(s.middlewareTransport, s.handlerTransport))

	addr := fmt.Sprintf(":%d", s.config.Server.Port)
	s.logger.WithField("addr", addr).Info("starting gateway server")
	return s.router.Listen(addr)
}
