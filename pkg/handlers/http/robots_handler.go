package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/sirupsen/logrus"
)

type robotsHandler struct {
	logger *logrus.Logger
	body   string
}

func NewRobotsHandler(logger *logrus.Logger) Handler {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	for _, decoy := range deception.DecoyPaths() {
		b.WriteString("Disallow: " + decoy + "\n")
	}
	b.WriteString("Allow: /\n")
	return &robotsHandler{logger: logger, body: b.String()}
}

// Handle serves robots.txt. Every Disallow entry is a decoy; visiting one
// is a robots violation signal.
func (h *robotsHandler) Handle(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(h.body)
}
