package server

import (
	"fmt"

	"github.com/nightkernel/sentinel/pkg/config"
	handlers "github.com/nightkernel/sentinel/pkg/handlers/http"
	"github.com/nightkernel/sentinel/pkg/middleware"
	"github.com/sirupsen/logrus"
)

type (
	SentinelServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	SentinelServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewSentinelServer(di SentinelServerDI) *SentinelServer {
	return &SentinelServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
}

func (s *SentinelServer) Run() error {
	s.setupDefenseChain()
	s.setupRoutes()
	s.setupHealthCheck()
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf(":%d", s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting sentinel server")
	return s.Router.Listen(addr)
}

// setupDefenseChain installs the assessment pipeline in front of every
// route: identity first, then the blocklist gate, session detection, the
// rate limiter and finally threat assessment.
func (s *SentinelServer) setupDefenseChain() {
	s.Router.Use(s.middlewareTransport.IdentityMiddleware.Middleware())
	s.Router.Use(s.middlewareTransport.BlocklistMiddleware.Middleware())
	s.Router.Use(s.middlewareTransport.SessionMiddleware.Middleware())
	s.Router.Use(s.middlewareTransport.RateLimitMiddleware.Middleware())
	s.Router.Use(s.middlewareTransport.ThreatMiddleware.Middleware())
}

func (s *SentinelServer) setupRoutes() {
	s.Router.Get("/robots.txt", s.handlerTransport.RobotsHandler.Handle)
	s.Router.Get("/pixel.png", s.handlerTransport.PixelHandler.Handle)

	adminOnly := s.middlewareTransport.AdminAuthMiddleware.Middleware()

	api := s.Router.Group("/api")
	{
		api.Get("/kv/:key", s.handlerTransport.GetContentHandler.Handle)
		api.Post("/kv/:key", adminOnly, s.handlerTransport.SetContentHandler.Handle)

		api.Get("/canary/:token", s.handlerTransport.CanaryCallbackHandler.Handle)
		api.Post("/contact", s.handlerTransport.ContactHandler.Handle)

		api.Get("/image-proxy", s.handlerTransport.ImageProxyHandler.Handle)
		api.Get("/drive-download", s.handlerTransport.DriveDownloadHandler.Handle)
		api.Get("/drive-folder", s.handlerTransport.DriveFolderHandler.Handle)

		api.Post("/admin/login", s.handlerTransport.LoginHandler.Handle)

		api.Get("/blocklist", adminOnly, s.handlerTransport.ListBlocklistHandler.Handle)
		api.Post("/blocklist", adminOnly, s.handlerTransport.BlockIdentityHandler.Handle)
		api.Delete("/blocklist/:hashed_ip", adminOnly, s.handlerTransport.UnblockIdentityHandler.Handle)

		api.Get("/security-incidents", adminOnly, s.handlerTransport.ListIncidentsHandler.Handle)

		api.Get("/security-settings", adminOnly, s.handlerTransport.GetSettingsHandler.Handle)
		api.Post("/security-settings", adminOnly, s.handlerTransport.UpdateSettingsHandler.Handle)

		api.Get("/attacker-profile", adminOnly, s.handlerTransport.ListProfilesHandler.Handle)
		api.Get("/attacker-profile/:hashed_ip", adminOnly, s.handlerTransport.GetProfileHandler.Handle)
		api.Delete("/attacker-profile/:hashed_ip", adminOnly, s.handlerTransport.DeleteProfileHandler.Handle)

		api.Get("/canary-alerts", adminOnly, s.handlerTransport.ListCanaryAlertsHandler.Handle)
	}
}

func (s *SentinelServer) Shutdown() error {
	return s.Router.Shutdown()
}
