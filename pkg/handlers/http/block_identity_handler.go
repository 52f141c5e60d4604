package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/blocklist"
	"github.com/sirupsen/logrus"
)

type blockIdentityHandler struct {
	logger    *logrus.Logger
	blocklist blocklist.Store
}

func NewBlockIdentityHandler(logger *logrus.Logger, blocklistStore blocklist.Store) Handler {
	return &blockIdentityHandler{logger: logger, blocklist: blocklistStore}
}

type blockRequest struct {
	HashedIP   string `json:"hashedIp"`
	Reason     string `json:"reason"`
	TTLSeconds int    `json:"ttlSeconds"`
}

func (h *blockIdentityHandler) Handle(c *fiber.Ctx) error {
	var req blockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.HashedIP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hashedIp is required"})
	}

	ttl := common.AutoBlockTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}
	reason := req.Reason
	if reason == "" {
		reason = "manually blocked"
	}

	if err := h.blocklist.Block(c.Context(), req.HashedIP, reason, ttl, false); err != nil {
		h.logger.WithError(err).Error("failed to block identity")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	h.logger.WithFields(logrus.Fields{
		"hashed_ip": req.HashedIP,
		"reason":    reason,
	}).Info("identity blocked by admin")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "blocked", "hashedIp": req.HashedIP})
}
