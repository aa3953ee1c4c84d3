package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/scheduler"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type ScheduleHandler struct {
	s *scheduler.Scheduler
}

func NewScheduleHandler(s *scheduler.Scheduler) *ScheduleHandler {
	return &ScheduleHandler{s: s}
}

// Assign distributes a batch of draft posts over the coming days.
func (h *ScheduleHandler) Assign(c *fiber.Ctx) error {
	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}
	if req.AccountID == "" || len(req.PostIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "account_id and post_ids are required",
		})
	}

	var startTime *time.Time
	if req.StartTime != "" {
		parsed, err := time.Parse("2006-01-02T15:04", req.StartTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid start time format",
			})
		}
		startTime = &parsed
	}

	posts, err := h.s.Assign(c.Context(), req.AccountID, req.PostIDs, req.PostsPerDay, startTime)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// Calendar returns the account's scheduled and published entries from the
// side index.
func (h *ScheduleHandler) Calendar(c *fiber.Ctx) error {
	entries, err := h.s.ScheduledForAccount(c.Context(), c.Params("account_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list schedule",
		})
	}
	return c.Status(fiber.StatusOK).JSON(entries)
}
