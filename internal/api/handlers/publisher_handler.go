package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/publisher"
	"github.com/maheshrc27/postpilot/pkg/ratelimit"
)

type PublisherHandler struct {
	pub     *publisher.Publisher
	limiter *ratelimit.Limiter
}

func NewPublisherHandler(pub *publisher.Publisher, limiter *ratelimit.Limiter) *PublisherHandler {
	return &PublisherHandler{pub: pub, limiter: limiter}
}

func (h *PublisherHandler) Status(c *fiber.Ctx) error {
	status, err := h.pub.Status(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read publisher status",
		})
	}
	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *PublisherHandler) LimiterStats(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.limiter.Stats())
}
