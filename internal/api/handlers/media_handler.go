package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
)

type MediaHandler struct {
	s service.MediaService
}

func NewMediaHandler(s service.MediaService) *MediaHandler {
	return &MediaHandler{s: s}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files selected",
		})
	}

	var saved []*service.MediaInfo
	for _, file := range files {
		info, err := h.s.SaveUpload(c.Context(), file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		saved = append(saved, info)
	}
	return c.Status(fiber.StatusOK).JSON(saved)
}

func (h *MediaHandler) ListPhotos(c *fiber.Ctx) error {
	photos, err := h.s.ListPhotos()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list photos",
		})
	}
	return c.Status(fiber.StatusOK).JSON(photos)
}

func (h *MediaHandler) ListVideos(c *fiber.Ctx) error {
	videos, err := h.s.ListVideos()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list videos",
		})
	}
	return c.Status(fiber.StatusOK).JSON(videos)
}
