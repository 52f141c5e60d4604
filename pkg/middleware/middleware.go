package middleware

import "github.com/gofiber/fiber/v2"

type Middleware interface {
	Middleware() fiber.Handler
}

type Transport struct {
	IdentityMiddleware  Middleware
	BlocklistMiddleware Middleware
	SessionMiddleware   Middleware
	RateLimitMiddleware Middleware
	ThreatMiddleware    Middleware
	AdminAuthMiddleware Middleware
}
