package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Public site
	GetContentHandler     Handler
	RobotsHandler         Handler
	PixelHandler          Handler
	CanaryCallbackHandler Handler
	ContactHandler        Handler
	ImageProxyHandler     Handler
	DriveDownloadHandler  Handler
	DriveFolderHandler    Handler

	// Admin
	LoginHandler            Handler
	SetContentHandler       Handler
	ListBlocklistHandler    Handler
	BlockIdentityHandler    Handler
	UnblockIdentityHandler  Handler
	ListIncidentsHandler    Handler
	GetSettingsHandler      Handler
	UpdateSettingsHandler   Handler
	GetProfileHandler       Handler
	ListProfilesHandler     Handler
	DeleteProfileHandler    Handler
	ListCanaryAlertsHandler Handler
}
